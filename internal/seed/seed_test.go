package seed

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

type fakeWriter struct {
	users   []*domain.User
	shifts  []*domain.Shift
	failing int
	calls   int
}

func (f *fakeWriter) fail() bool {
	f.calls++
	return f.failing > 0 && f.calls%f.failing == 0
}

func (f *fakeWriter) CreateUser(ctx context.Context, user *domain.User) error {
	if f.fail() {
		return errors.New("duplicate key")
	}
	user.ID = domain.ID(len(f.users) + 1)
	f.users = append(f.users, user)
	return nil
}

func (f *fakeWriter) CreateShift(ctx context.Context, shift *domain.Shift) error {
	if f.fail() {
		return errors.New("duplicate key")
	}
	shift.ID = domain.ID(len(f.shifts) + 1)
	f.shifts = append(f.shifts, shift)
	return nil
}

func TestSeedWorkers(t *testing.T) {
	w := &fakeWriter{}
	assert.Equal(t, 10, SeedWorkers(context.Background(), w, rand.New(rand.NewSource(1)), 2, 10, "example.com"))
	assert.Len(t, w.users, 10)
	for _, u := range w.users {
		assert.Equal(t, domain.ID(2), u.CompanyID)
	}

	w = &fakeWriter{failing: 2}
	assert.Equal(t, 5, SeedWorkers(context.Background(), w, rand.New(rand.NewSource(1)), 2, 10, "example.com"))
}

func TestSeedShifts(t *testing.T) {
	w := &fakeWriter{}
	created := SeedShifts(context.Background(), w, rand.New(rand.NewSource(1)), 1, 4)
	assert.Len(t, created, 4)
	for _, s := range created {
		assert.NotZero(t, s.ID)
		assert.Equal(t, domain.ID(1), s.CompanyID)
	}

	w = &fakeWriter{failing: 2}
	assert.Len(t, SeedShifts(context.Background(), w, rand.New(rand.NewSource(1)), 1, 4), 2)

	assert.Empty(t, SeedShifts(context.Background(), &fakeWriter{}, rand.New(rand.NewSource(1)), 1, 0))
}
