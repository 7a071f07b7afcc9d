package session

import (
	"errors"

	"github.com/xtding233/gacha-roulette/internal/ledger"
)

// Precondition failures. A call returning one of these changed nothing.
var (
	ErrInsufficientPrimary   = ledger.ErrInsufficientPrimary
	ErrInsufficientSecondary = ledger.ErrInsufficientSecondary

	ErrItemNotFound      = errors.New("item not found")
	ErrEquipFull         = errors.New("equip set is full")
	ErrEquipDisabled     = errors.New("equipping is not available in this game")
	ErrBuffActive        = errors.New("a buff is already active")
	ErrUnknownBuff       = errors.New("unknown buff")
	ErrUnknownLuckyBlock = errors.New("unknown lucky block")
	ErrWrongAdminCode    = errors.New("wrong admin code")
	ErrNotAdmin          = errors.New("admin mode is not enabled")
	ErrGrantNotAllowed   = errors.New("grant amount not offered by this game")
)
