package repository

import (
	bookingRepo "timeswap/database/repository/booking"
	slotRepo "timeswap/database/repository/slot"
	userRepo "timeswap/database/repository/user"
)

// Re-export the SlotRepository interface and constructors.
type SlotRepository = slotRepo.SlotRepository

var (
	NewMongoSlotRepo  = slotRepo.NewMongoSlotRepo
	NewMemorySlotRepo = slotRepo.NewMemorySlotRepo
)

// Re-export the UserRepository interface and constructors.
type UserRepository = userRepo.UserRepository

var (
	NewMongoUserRepo  = userRepo.NewMongoUserRepo
	NewMemoryUserRepo = userRepo.NewMemoryUserRepo
)

// Re-export the BookingRepository interface and constructors.
type BookingRepository = bookingRepo.BookingRepository

var (
	NewMongoBookingRepo  = bookingRepo.NewMongoBookingRepo
	NewMemoryBookingRepo = bookingRepo.NewMemoryBookingRepo
)

// Repositories bundles the stores a process runs against.
type Repositories struct {
	Slots    SlotRepository
	Users    UserRepository
	Bookings BookingRepository
}

// NewMemoryRepositories returns an in-process store set.
func NewMemoryRepositories() Repositories {
	return Repositories{
		Slots:    NewMemorySlotRepo(),
		Users:    NewMemoryUserRepo(),
		Bookings: NewMemoryBookingRepo(),
	}
}

// NewMongoRepositories returns the MongoDB store set and ensures indexes.
func NewMongoRepositories() (Repositories, error) {
	repos := Repositories{
		Slots:    NewMongoSlotRepo(),
		Users:    NewMongoUserRepo(),
		Bookings: NewMongoBookingRepo(),
	}
	for _, r := range []any{repos.Slots, repos.Bookings} {
		if ix, ok := r.(interface{ EnsureIndexes() error }); ok {
			if err := ix.EnsureIndexes(); err != nil {
				return repos, err
			}
		}
	}
	return repos, nil
}
