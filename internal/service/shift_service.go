package service

import (
	"encoding/json"
	"errors"
	"time"

	"sibos-pos/internal/model"
	"sibos-pos/internal/repository"
	"sibos-pos/internal/ws"
	"sibos-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Asia/Jakarta timezone
var jakartaLoc *time.Location

func init() {
	var err error
	jakartaLoc, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		// Fallback to UTC+7 if timezone data not available
		jakartaLoc = time.FixedZone("WIB", 7*60*60)
	}
}

var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrShiftAlreadyOpen   = errors.New("an open shift already exists for this outlet")
	ErrShiftAlreadyClosed = errors.New("shift is already closed")
	ErrUserNotActive      = errors.New("cannot open shift for inactive user")
)

type ShiftService interface {
	// Open starts a register session. One open shift per outlet at a time.
	Open(outletID, userID uuid.UUID, openingCash decimal.Decimal, actorID string) (*model.Shift, error)
	// Close ends the session, recording the counted drawer amount against
	// the expected amount.
	Close(shiftID uuid.UUID, closingCash decimal.Decimal, note, actorID string) (*model.Shift, error)
	GetOpen(outletID uuid.UUID) (*model.Shift, error)
	GetByID(id uuid.UUID) (*model.Shift, error)
	ListRecent(outletID uuid.UUID, limit int) ([]model.Shift, error)
}

type shiftService struct {
	shiftRepo repository.ShiftRepository
	userRepo  repository.UserRepository
	db        *gorm.DB
	wsHub     *ws.Hub
	log       *logrus.Entry
}

func NewShiftService(shiftRepo repository.ShiftRepository, userRepo repository.UserRepository, db *gorm.DB, hub *ws.Hub) ShiftService {
	return &shiftService{
		shiftRepo: shiftRepo,
		userRepo:  userRepo,
		db:        db,
		wsHub:     hub,
		log:       logger.WithComponent("shift_service"),
	}
}

func (s *shiftService) Open(outletID, userID uuid.UUID, openingCash decimal.Decimal, actorID string) (*model.Shift, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserNotActive
	}

	var shift *model.Shift
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Cek shift yang masih open untuk outlet ini
		if _, err := s.shiftRepo.LockOpenByOutlet(tx, outletID); err == nil {
			return ErrShiftAlreadyOpen
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		shift = &model.Shift{
			OutletID:    outletID,
			UserID:      userID,
			Status:      model.ShiftOpen,
			OpenedAt:    time.Now().In(jakartaLoc),
			OpeningCash: openingCash,
		}
		shift.CreatedBy = actorID
		return tx.Create(shift).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"outlet": outletID,
		"user":   user.FullName,
	}).Info("shift opened")
	s.notify(shift, "shift_opened")
	return shift, nil
}

func (s *shiftService) Close(shiftID uuid.UUID, closingCash decimal.Decimal, note, actorID string) (*model.Shift, error) {
	var shift *model.Shift
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sh model.Shift
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&sh, "id = ?", shiftID).Error; err != nil {
			return ErrShiftNotFound
		}
		if sh.Status == model.ShiftClosed {
			return ErrShiftAlreadyClosed
		}

		now := time.Now().In(jakartaLoc)
		sh.Status = model.ShiftClosed
		sh.ClosedAt = &now
		sh.ClosingCash = closingCash
		sh.ExpectedCash = sh.OpeningCash.Add(sh.TotalCash)
		sh.Note = note
		sh.UpdatedBy = actorID
		if err := tx.Save(&sh).Error; err != nil {
			return err
		}
		shift = &sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	variance := shift.ClosingCash.Sub(shift.ExpectedCash)
	s.log.WithFields(logrus.Fields{
		"shift":    shift.ID,
		"orders":   shift.TotalOrders,
		"variance": variance.String(),
	}).Info("shift closed")
	s.notify(shift, "shift_closed")
	return shift, nil
}

func (s *shiftService) GetOpen(outletID uuid.UUID) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindOpenByOutlet(outletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) GetByID(id uuid.UUID) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindByID(id)
	if err != nil {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

func (s *shiftService) ListRecent(outletID uuid.UUID, limit int) ([]model.Shift, error) {
	return s.shiftRepo.FindRecentByOutlet(outletID, limit)
}

func (s *shiftService) notify(shift *model.Shift, action string) {
	go func() {
		payload := map[string]interface{}{
			"type":   "shift_notification",
			"action": action,
			"shift": map[string]interface{}{
				"id":        shift.ID,
				"outlet_id": shift.OutletID,
				"status":    shift.Status,
			},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
