// Package session hosts one container grid and turns user intents into grid
// operations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gravitas-games/gridstash/internal/store"
	"github.com/gravitas-games/gridstash/pkg/inventory"
)

// Session errors
var (
	ErrBadRequest  = errors.New("session: bad request")
	ErrUnknownType = errors.New("session: unknown message type")
	ErrHandEmpty   = errors.New("session: nothing held")
	ErrHandFull    = errors.New("session: already holding a stack")
)

// Option configures a Session.
type Option func(*Session)

// WithEventBus routes change events to bus.
func WithEventBus(bus EventBus) Option {
	return func(s *Session) { s.events = bus }
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithOwner records who the container belongs to.
func WithOwner(owner string) Option {
	return func(s *Session) { s.Owner = owner }
}

// Session represents one open container. The grid is not safe for concurrent
// use, so every intent runs under the session mutex. Event handlers run while
// that mutex is held and must not call back into the session.
type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	mu       sync.Mutex
	grid     *inventory.Grid
	registry *inventory.Registry
	held     *HeldStack

	events EventBus
	logger *zap.Logger
	now    func() time.Time
}

// New opens a session over grid. The grid must carry the registry used to
// resolve item codes.
func New(grid *inventory.Grid, opts ...Option) (*Session, error) {
	if grid == nil {
		return nil, errors.New("session: nil grid")
	}
	if grid.Registry() == nil {
		return nil, errors.New("session: grid has no registry")
	}
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		grid:      grid,
		registry:  grid.Registry(),
		events:    NewNullEventBus(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.ID), zap.String("grid", grid.ID))
	s.logger.Info("session opened",
		zap.String("owner", s.Owner),
		zap.Int("width", grid.Width()),
		zap.Int("height", grid.Height()),
		zap.Int("stacks", grid.StackCount()))
	return s, nil
}

// GridID returns the ID of the hosted grid.
func (s *Session) GridID() string { return s.grid.ID }

// Held returns a copy of the held stack, if any.
func (s *Session) Held() (HeldStack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		return HeldStack{}, false
	}
	return *s.held, true
}

// State returns the full container view.
func (s *Session) State() StatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Persist saves the grid snapshot to st. A held stack is returned to the grid
// first when it fits; otherwise it is not persisted.
func (s *Session) Persist(ctx context.Context, st store.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held != nil {
		if _, err := s.drop(); err != nil {
			s.logger.Warn("held stack not persisted",
				zap.String("item", string(s.held.Item)),
				zap.Int("qty", s.held.Quantity),
				zap.Error(err))
		}
	}
	if err := store.SaveGrid(ctx, st, s.grid); err != nil {
		return err
	}
	s.logger.Info("grid saved", zap.Int("stacks", s.grid.StackCount()))
	return nil
}

// Handle applies one intent and returns its response.
func (s *Session) Handle(msg ClientMessage) ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Type == MsgTypePing {
		return ServerMessage{ID: msg.ID, Type: MsgTypePong}
	}
	result, err := s.dispatch(msg)
	if err != nil {
		s.logger.Debug("intent failed", zap.String("type", msg.Type), zap.Error(err))
		return ServerMessage{
			ID:   msg.ID,
			Type: MsgTypeError,
			Payload: ErrorPayload{
				Code:    errorCode(err),
				Message: err.Error(),
			},
		}
	}
	return ServerMessage{ID: msg.ID, Type: MsgTypeResult, Payload: result}
}

func (s *Session) dispatch(msg ClientMessage) (*ResultPayload, error) {
	switch msg.Type {
	case MsgTypeAdd:
		p, err := decode[AddPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) { return s.add(p) })
	case MsgTypeRemove:
		p, err := decode[RemovePayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) { return s.remove(p) })
	case MsgTypePickup:
		p, err := decode[PickupPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) { return s.pickup(p) })
	case MsgTypePlace:
		p, err := decode[PlacePayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) { return s.place(p) })
	case MsgTypeDrop:
		return s.mutate(msg.Type, s.drop)
	case MsgTypeRotate:
		p, err := decode[RotatePayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) { return s.rotate(p) })
	case MsgTypeMove:
		p, err := decode[MovePayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) {
			st, err := s.grid.MoveStack(p.From, p.To, p.Rotation)
			if err != nil {
				return nil, err
			}
			return &ResultPayload{Stack: stackView(st)}, nil
		})
	case MsgTypeSplit:
		p, err := decode[SplitPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.mutate(msg.Type, func() (*ResultPayload, error) {
			st, err := s.grid.SplitStack(p.From, p.Amount, p.To, p.Rotation)
			if err != nil {
				return nil, err
			}
			return &ResultPayload{Stack: stackView(st)}, nil
		})
	case MsgTypeQuery:
		p, err := decode[QueryPayload](msg.Payload)
		if err != nil {
			return nil, err
		}
		return s.query(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
}

// mutate runs fn and publishes the resulting stack changes, or a rejection
// for placement intents that failed.
func (s *Session) mutate(intent string, fn func() (*ResultPayload, error)) (*ResultPayload, error) {
	before := s.grid.Stacks()
	result, err := fn()
	if err != nil {
		if rejectsPlacement(intent) {
			s.publish(Event{Type: EventPlacementRejected, Intent: intent, Reason: err.Error()})
		}
		return nil, err
	}
	for _, ev := range diffEvents(before, s.grid.Stacks()) {
		ev.Intent = intent
		s.publish(ev)
	}
	return result, nil
}

func rejectsPlacement(intent string) bool {
	switch intent {
	case MsgTypeAdd, MsgTypePlace, MsgTypeDrop, MsgTypeRotate, MsgTypeMove, MsgTypeSplit:
		return true
	}
	return false
}

func (s *Session) publish(ev Event) {
	ev.SessionID = s.ID
	ev.GridID = s.grid.ID
	ev.Timestamp = s.now()
	s.events.Publish(ev)
}

func (s *Session) lookup(code inventory.ItemCode) (*inventory.ItemType, error) {
	item, ok := s.registry.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: unknown item %q", inventory.ErrInvalidReference, code)
	}
	return item, nil
}

func (s *Session) add(p AddPayload) (*ResultPayload, error) {
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrBadRequest)
	}
	requests := make([]inventory.ItemRequest, 0, len(p.Items))
	for _, line := range p.Items {
		item, err := s.lookup(line.Item)
		if err != nil {
			return nil, err
		}
		if line.Amount < 0 {
			return nil, fmt.Errorf("%w: %d %s", inventory.ErrInvalidAmount, line.Amount, line.Item)
		}
		requests = append(requests, inventory.ItemRequest{Item: item, Amount: line.Amount})
	}
	plans, err := s.grid.AddItemList(requests)
	if err != nil {
		return nil, err
	}
	views := make([]PlacementView, 0, len(plans))
	for _, pl := range plans {
		views = append(views, PlacementView{
			Item:     pl.Item.Code,
			Amount:   pl.Amount,
			Position: pl.Position,
			Rotation: pl.Rotation,
			Cells:    pl.Cells,
			New:      pl.New,
		})
	}
	return &ResultPayload{Placements: views}, nil
}

func (s *Session) remove(p RemovePayload) (*ResultPayload, error) {
	if p.At != nil {
		if _, err := s.grid.RemoveItemsAt(*p.At, p.Amount); err != nil {
			return nil, err
		}
		return &ResultPayload{Removed: p.Amount}, nil
	}
	if p.Item == "" {
		return nil, fmt.Errorf("%w: remove needs an item or a cell", ErrBadRequest)
	}
	if err := s.grid.RemoveItemsByCode(p.Item, p.Amount); err != nil {
		return nil, err
	}
	return &ResultPayload{Removed: p.Amount}, nil
}

func (s *Session) pickup(p PickupPayload) (*ResultPayload, error) {
	if s.held != nil {
		return nil, ErrHandFull
	}
	if p.Amount < 0 {
		return nil, fmt.Errorf("%w: %d", inventory.ErrInvalidAmount, p.Amount)
	}
	st, ok := s.grid.GetStackAt(p.At)
	if !ok {
		return nil, fmt.Errorf("%w: (%d,%d)", inventory.ErrNoStack, p.At.X, p.At.Y)
	}
	amount := p.Amount
	if amount == 0 || amount >= st.Quantity {
		if _, err := s.grid.DeleteStack(p.At); err != nil {
			return nil, err
		}
		amount = st.Quantity
	} else if _, err := s.grid.RemoveItemsAt(p.At, amount); err != nil {
		return nil, err
	}
	s.held = &HeldStack{Item: st.Code(), Quantity: amount, Rotation: st.Rotation, itemType: st.Item}
	held := *s.held
	return &ResultPayload{Held: &held}, nil
}

func (s *Session) place(p PlacePayload) (*ResultPayload, error) {
	if s.held == nil {
		return nil, ErrHandEmpty
	}
	rot := s.held.Rotation
	if p.Rotation != nil {
		rot = p.Rotation.Normalize()
	}
	leftover, err := s.grid.PlaceStack(p.At, s.held.itemType, rot, s.held.Quantity)
	if err != nil {
		return nil, err
	}
	res := &ResultPayload{Leftover: leftover}
	if st, ok := s.grid.GetStackAt(p.At); ok {
		res.Stack = stackView(st)
	}
	if leftover == 0 {
		s.held = nil
	} else {
		s.held.Quantity = leftover
		s.held.Rotation = rot
		held := *s.held
		res.Held = &held
	}
	return res, nil
}

// drop returns the held stack to the grid wherever it fits.
func (s *Session) drop() (*ResultPayload, error) {
	if s.held == nil {
		return nil, ErrHandEmpty
	}
	if _, err := s.grid.AddItems(s.held.itemType, s.held.Quantity); err != nil {
		return nil, err
	}
	s.held = nil
	return &ResultPayload{}, nil
}

func (s *Session) rotate(p RotatePayload) (*ResultPayload, error) {
	if p.At == nil {
		if s.held == nil {
			return nil, ErrHandEmpty
		}
		s.held.Rotation = p.Rotation.Normalize()
		held := *s.held
		return &ResultPayload{Held: &held}, nil
	}
	st, err := s.grid.RotateStack(*p.At, p.Rotation)
	if err != nil {
		return nil, err
	}
	return &ResultPayload{Stack: stackView(st)}, nil
}

func (s *Session) query(p QueryPayload) (*ResultPayload, error) {
	switch p.What {
	case QueryState, "":
		state := s.state()
		return &ResultPayload{State: &state}, nil
	case QueryStack:
		if p.At == nil {
			return nil, fmt.Errorf("%w: stack query needs a cell", ErrBadRequest)
		}
		st, ok := s.grid.GetStackAt(*p.At)
		if !ok {
			return nil, fmt.Errorf("%w: (%d,%d)", inventory.ErrNoStack, p.At.X, p.At.Y)
		}
		return &ResultPayload{Stack: stackView(st)}, nil
	case QuerySpace:
		item, err := s.lookup(p.Item)
		if err != nil {
			return nil, err
		}
		exists := s.grid.DoesSpaceExist(item, p.Amount, inventory.ExcludeCells())
		return &ResultPayload{Exists: &exists}, nil
	case QueryCount:
		count := s.grid.CountItems(p.Item)
		return &ResultPayload{Count: &count}, nil
	case QueryItems:
		return &ResultPayload{Items: s.registry.Export()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown query %q", ErrBadRequest, p.What)
	}
}

func (s *Session) state() StatePayload {
	state := StatePayload{
		SessionID: s.ID,
		Owner:     s.Owner,
		Grid:      s.grid.Snapshot(),
		FreeCells: s.grid.FreeCells(),
		Render:    s.grid.Render(),
	}
	if s.held != nil {
		held := *s.held
		state.Held = &held
	}
	return state
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return v, nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, inventory.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, inventory.ErrOccupied):
		return "occupied"
	case errors.Is(err, inventory.ErrInsufficientSpace):
		return "insufficient_space"
	case errors.Is(err, inventory.ErrInsufficientQuantity):
		return "insufficient_quantity"
	case errors.Is(err, inventory.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, inventory.ErrNoStack):
		return "no_stack"
	case errors.Is(err, inventory.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrHandEmpty):
		return "hand_empty"
	case errors.Is(err, ErrHandFull):
		return "hand_full"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	default:
		return "internal"
	}
}
