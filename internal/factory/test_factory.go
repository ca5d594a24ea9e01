package factory

import (
	"time"

	"github.com/mcoot/arenagame-go/internal/config"
	"github.com/mcoot/arenagame-go/internal/dependencies/mocks"
	"github.com/mcoot/arenagame-go/internal/storage/memory"
	"github.com/mcoot/arenagame-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDGenerator
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDGenerator("id")

	app := newWithDependencies(config.Default(), store, mockClock, mockRandom, mockIDs, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Memory:     store,
	}
}
