package utils

import (
	"context"
	"errors"
	"ims/src/config"
	"ims/src/db"
	"ims/src/lib"
	"ims/src/models"
	"ims/src/types"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const referenceCacheTTL = 24 * time.Hour

// BookItem reserves one unit of an inventory item for a member. Row locks are
// always acquired member first, inventory second; CancelBooking and the
// cascading delete paths follow the same order so the transactions cannot
// deadlock each other.
func BookItem(params *types.CreateBookingRequestBody) (*models.Booking, error) {
	db := db.GetDb()
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Member{ID: params.MemberID}).
			First(&member).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewError(types.ErrMemberNotFound)
			}
			return err
		}
		var item models.Inventory
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Inventory{ID: params.InventoryID}).
			First(&item).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewError(types.ErrInventoryNotFound)
			}
			return err
		}
		if member.BookingCount >= config.MAX_BOOKINGS {
			return types.NewError(types.ErrBookingLimit)
		}
		if item.RemainingCount <= 0 {
			return types.NewError(types.ErrOutOfStock)
		}
		booking = models.Booking{
			MemberID:    member.ID,
			InventoryID: item.ID,
			BookingDate: time.Now(),
			Reference:   uuid.New(),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Member{}).
			Where(&models.Member{ID: member.ID}).
			Update("booking_count", gorm.Expr("booking_count + ?", 1)).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Inventory{}).
			Where(&models.Inventory{ID: item.ID}).
			Update("remaining_count", gorm.Expr("remaining_count - ?", 1)).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("BookItem failed: %s\n", err.Error())
		return nil, err
	}
	cacheBookingReference(&booking)
	return &booking, nil
}

// CancelBooking releases the booking identified by its reference token and
// restores both counters inside the same transaction.
func CancelBooking(reference uuid.UUID) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		// explicit condition: a struct condition would drop a zero-valued
		// reference and match an arbitrary row
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewError(types.ErrBookingNotFound)
			}
			return err
		}
		var member models.Member
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Member{ID: booking.MemberID}).
			First(&member).
			Error; err != nil {
			return err
		}
		var item models.Inventory
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Inventory{ID: booking.InventoryID}).
			First(&item).
			Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Booking{}, booking.ID).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Member{}).
			Where(&models.Member{ID: member.ID}).
			Update("booking_count", gorm.Expr("booking_count - ?", 1)).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Inventory{}).
			Where(&models.Inventory{ID: item.ID}).
			Update("remaining_count", gorm.Expr("remaining_count + ?", 1)).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("CancelBooking failed: %s\n", err.Error())
		return err
	}
	dropBookingReference(reference)
	return nil
}

// DeleteInventoryItem removes an inventory row. Live bookings on the item are
// cascaded with it and each holding member's booking_count is rolled back.
// Holding member rows are locked in id order before the inventory row, so the
// member-then-inventory lock order of BookItem and CancelBooking holds here
// too.
func DeleteInventoryItem(id uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var bookings []models.Booking
		if err := tx.
			Where(&models.Booking{InventoryID: id}).
			Find(&bookings).
			Error; err != nil {
			return err
		}
		memberIds := make([]uint, 0, len(bookings))
		seen := make(map[uint]bool, len(bookings))
		for _, booking := range bookings {
			if !seen[booking.MemberID] {
				seen[booking.MemberID] = true
				memberIds = append(memberIds, booking.MemberID)
			}
		}
		sort.Slice(memberIds, func(i, j int) bool { return memberIds[i] < memberIds[j] })
		if len(memberIds) > 0 {
			var holders []models.Member
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id IN ?", memberIds).
				Order("id").
				Find(&holders).
				Error; err != nil {
				return err
			}
		}
		var item models.Inventory
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Inventory{ID: id}).
			First(&item).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewError(types.ErrInventoryNotFound)
			}
			return err
		}
		for _, booking := range bookings {
			if err := tx.
				Model(&models.Member{}).
				Where(&models.Member{ID: booking.MemberID}).
				Update("booking_count", gorm.Expr("booking_count - ?", 1)).
				Error; err != nil {
				return err
			}
		}
		if len(bookings) > 0 {
			if err := tx.
				Where("inventory_id = ?", id).
				Delete(&models.Booking{}).
				Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Inventory{}, id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("DeleteInventoryItem failed: %s\n", err.Error())
		return err
	}
	return nil
}

// DeleteMember removes a member row, cascading live bookings and restoring
// remaining_count on every inventory item the member was holding.
func DeleteMember(id uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Member{ID: id}).
			First(&member).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewError(types.ErrMemberNotFound)
			}
			return err
		}
		var bookings []models.Booking
		if err := tx.
			Where(&models.Booking{MemberID: id}).
			Find(&bookings).
			Error; err != nil {
			return err
		}
		for _, booking := range bookings {
			if err := tx.
				Model(&models.Inventory{}).
				Where(&models.Inventory{ID: booking.InventoryID}).
				Update("remaining_count", gorm.Expr("remaining_count + ?", 1)).
				Error; err != nil {
				return err
			}
		}
		if len(bookings) > 0 {
			if err := tx.
				Where("member_id = ?", id).
				Delete(&models.Booking{}).
				Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Member{}, id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("DeleteMember failed: %s\n", err.Error())
		return err
	}
	return nil
}

// CreateInventoryBatch inserts loader output as one atomic batch.
func CreateInventoryBatch(rows []models.Inventory) error {
	if len(rows) == 0 {
		return nil
	}
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}

// CreateMemberBatch inserts loader output as one atomic batch.
func CreateMemberBatch(rows []models.Member) error {
	if len(rows) == 0 {
		return nil
	}
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}

// PurgeExpiredInventory deletes inventory past its expiration date through
// the cascading path, so counters held by members stay consistent. Runs from
// the scheduler.
func PurgeExpiredInventory() {
	db := db.GetDb()
	var expired []models.Inventory
	err := db.
		Model(&models.Inventory{}).
		Select("id", "title", "expiration_date").
		Where("expiration_date < ?", time.Now()).
		Find(&expired).
		Error
	if err != nil {
		log.Printf("Error retrieving expired inventory: %s\n", err.Error())
		return
	}
	for _, item := range expired {
		if err := DeleteInventoryItem(item.ID); err != nil {
			log.Printf("Error purging inventory [%d]: %s\n", item.ID, err.Error())
			continue
		}
		log.Printf("Purged expired inventory [%d] %s\n", item.ID, item.Title)
	}
}

func cacheBookingReference(booking *models.Booking) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	key := booking.Reference.String()
	if _, err := rd.SetEx(context.Background(), key, booking.ID, referenceCacheTTL).Result(); err != nil {
		log.Printf("Error caching value [%s]: %s\n", key, err.Error())
	}
}

func dropBookingReference(reference uuid.UUID) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), reference.String()).Err(); err != nil {
		log.Printf("Error dropping cached value [%s]: %s\n", reference.String(), err.Error())
	}
}
