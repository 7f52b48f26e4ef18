package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kewo/kewo-rechner/internal/calculator"
	"github.com/kewo/kewo-rechner/internal/db"
	"github.com/kewo/kewo-rechner/internal/migrations"
)

const testTTL = time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSQLiteStore(t *testing.T, clock *fakeClock) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database))

	s := NewSQLiteStore(database, testTTL)
	s.now = clock.Now
	return s
}

func newMemoryStore(clock *fakeClock) *MemoryStore {
	s := NewMemoryStore(testTTL)
	s.now = clock.Now
	return s
}

type purgingStore interface {
	Store
	Purger
}

func factories() map[string]func(t *testing.T, clock *fakeClock) purgingStore {
	return map[string]func(t *testing.T, clock *fakeClock) purgingStore{
		"sqlite": func(t *testing.T, clock *fakeClock) purgingStore { return newSQLiteStore(t, clock) },
		"memory": func(t *testing.T, clock *fakeClock) purgingStore { return newMemoryStore(clock) },
	}
}

func setField(field calculator.Field, value string) UpdateFunc {
	return func(in *calculator.Inputs) error {
		return in.Set(field, value)
	}
}

func TestStore_LoadMissingSession(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t, newFakeClock())

			_, err := s.Load(context.Background(), uuid.NewString())
			assert.ErrorIs(t, err, ErrNotFound)

			in, err := LoadOrDefault(context.Background(), s, uuid.NewString())
			require.NoError(t, err)
			assert.Equal(t, calculator.Inputs{}, in)
		})
	}
}

func TestStore_UpdateCreatesAndChangesOneField(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t, newFakeClock())
			id := uuid.NewString()

			in, err := s.Update(ctx, id, setField(calculator.FieldElectricityConsumption, "3000"))
			require.NoError(t, err)
			assert.Equal(t, "3000", in.ElectricityConsumption)

			in, err = s.Update(ctx, id, setField(calculator.FieldHeatingFuel, "oel"))
			require.NoError(t, err)
			assert.Equal(t, "3000", in.ElectricityConsumption)
			assert.Equal(t, calculator.FuelOil, in.HeatingFuel)

			loaded, err := s.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, in, loaded)
		})
	}
}

func TestStore_FailedUpdateLeavesInputsUnchanged(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t, newFakeClock())
			id := uuid.NewString()

			_, err := s.Update(ctx, id, setField(calculator.FieldPVKWp, "10"))
			require.NoError(t, err)

			_, err = s.Update(ctx, id, setField(calculator.FieldHeatingFuel, "wood"))
			assert.True(t, errors.Is(err, calculator.ErrInvalidFuelType))

			loaded, err := s.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "10", loaded.PVKWp)
			assert.Equal(t, calculator.FuelGas, loaded.HeatingFuel)
		})
	}
}

func TestStore_ExpiryAndPurge(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			s := factory(t, clock)

			stale := uuid.NewString()
			_, err := s.Update(ctx, stale, setField(calculator.FieldPVKWp, "5"))
			require.NoError(t, err)

			clock.Advance(testTTL / 2)
			fresh := uuid.NewString()
			_, err = s.Update(ctx, fresh, setField(calculator.FieldPVKWp, "6"))
			require.NoError(t, err)

			clock.Advance(testTTL / 2)

			_, err = s.Load(ctx, stale)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Load(ctx, fresh)
			assert.NoError(t, err)

			n, err := s.PurgeExpired(ctx, clock.Now())
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			// An expired session starts over from zero inputs.
			clock.Advance(testTTL)
			in, err := s.Update(ctx, fresh, setField(calculator.FieldElectricityPrice, "0.30"))
			require.NoError(t, err)
			assert.Equal(t, "", in.PVKWp)
			assert.Equal(t, "0.30", in.ElectricityPrice)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t, newFakeClock())
			id := uuid.NewString()

			_, err := s.Update(ctx, id, setField(calculator.FieldPVKWp, "10"))
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, id))
			require.NoError(t, s.Delete(ctx, id))

			_, err = s.Load(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_ConcurrentUpdatesKeepEveryField(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t, newFakeClock())
			id := uuid.NewString()

			var wg sync.WaitGroup
			for _, field := range calculator.Fields() {
				if field == calculator.FieldHeatingFuel {
					continue
				}
				wg.Add(1)
				go func(field calculator.Field) {
					defer wg.Done()
					_, err := s.Update(ctx, id, setField(field, "1"))
					assert.NoError(t, err)
				}(field)
			}
			wg.Wait()

			in, err := s.Load(ctx, id)
			require.NoError(t, err)
			for _, field := range calculator.Fields() {
				if field == calculator.FieldHeatingFuel {
					continue
				}
				assert.Equal(t, "1", in.Get(field), "field %s", field)
			}
		})
	}
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	clock := newFakeClock()
	s := newMemoryStore(clock)
	_, err := s.Update(context.Background(), uuid.NewString(), setField(calculator.FieldPVKWp, "1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, s, 10*time.Millisecond, zap.NewNop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, 30*time.Minute, SweepInterval(time.Hour))
	assert.Equal(t, time.Second, SweepInterval(time.Second))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	s := NewRedisStore(addr, time.Minute)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	id := uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(context.Background(), id) })

	_, err := s.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, id, setField(calculator.FieldElectricityConsumption, "3000"))
	require.NoError(t, err)
	in, err := s.Update(ctx, id, setField(calculator.FieldHeatingFuel, "oel"))
	require.NoError(t, err)
	assert.Equal(t, "3000", in.ElectricityConsumption)
	assert.Equal(t, calculator.FuelOil, in.HeatingFuel)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
