package session

import (
	"encoding/json"

	"github.com/gravitas-games/gridstash/pkg/inventory"
)

// Message types - Client → Session
const (
	MsgTypeAdd    = "add"
	MsgTypeRemove = "remove"
	MsgTypePickup = "pickup"
	MsgTypePlace  = "place"
	MsgTypeDrop   = "drop"
	MsgTypeRotate = "rotate"
	MsgTypeMove   = "move"
	MsgTypeSplit  = "split"
	MsgTypeQuery  = "query"
	MsgTypePing   = "ping"
)

// Message types - Session → Client
const (
	MsgTypeResult = "result"
	MsgTypeError  = "error"
	MsgTypeEvent  = "event"
	MsgTypePong   = "pong"
)

// Query kinds carried in QueryPayload.What
const (
	QueryState = "state"
	QueryStack = "stack"
	QuerySpace = "space"
	QueryCount = "count"
	QueryItems = "items"
)

// ClientMessage is one intent. ID is echoed back on the response.
type ClientMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is a response or a pushed event.
type ServerMessage struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// --- Client Message Payloads ---

// ItemAmount names a quantity of one item type.
type ItemAmount struct {
	Item   inventory.ItemCode `json:"item"`
	Amount int                `json:"amount"`
}

// AddPayload adds a shopping list atomically.
type AddPayload struct {
	Items []ItemAmount `json:"items"`
}

// RemovePayload removes from one stack when At is set, otherwise by item code
// across the grid.
type RemovePayload struct {
	Item   inventory.ItemCode `json:"item,omitempty"`
	Amount int                `json:"amount"`
	At     *inventory.Cell    `json:"at,omitempty"`
}

// PickupPayload lifts a stack, or Amount units of it, onto the cursor.
// Amount 0 takes the whole stack.
type PickupPayload struct {
	At     inventory.Cell `json:"at"`
	Amount int            `json:"amount,omitempty"`
}

// PlacePayload releases the held stack with its handle on At. A nil Rotation
// keeps the held rotation.
type PlacePayload struct {
	At       inventory.Cell      `json:"at"`
	Rotation *inventory.Rotation `json:"rotation,omitempty"`
}

// RotatePayload turns the stack at At, or the held stack when At is nil.
type RotatePayload struct {
	At       *inventory.Cell    `json:"at,omitempty"`
	Rotation inventory.Rotation `json:"rotation"`
}

// MovePayload relocates a stack.
type MovePayload struct {
	From     inventory.Cell     `json:"from"`
	To       inventory.Cell     `json:"to"`
	Rotation inventory.Rotation `json:"rotation"`
}

// SplitPayload moves Amount units of the stack at From into a new stack at To.
type SplitPayload struct {
	From     inventory.Cell     `json:"from"`
	To       inventory.Cell     `json:"to"`
	Amount   int                `json:"amount"`
	Rotation inventory.Rotation `json:"rotation"`
}

// QueryPayload reads state without changing it.
type QueryPayload struct {
	What   string             `json:"what"`
	At     *inventory.Cell    `json:"at,omitempty"`
	Item   inventory.ItemCode `json:"item,omitempty"`
	Amount int                `json:"amount,omitempty"`
}

// --- Server Message Payloads ---

// HeldStack is the stack currently attached to the cursor.
type HeldStack struct {
	Item     inventory.ItemCode `json:"item"`
	Quantity int                `json:"qty"`
	Rotation inventory.Rotation `json:"rotation"`

	itemType *inventory.ItemType
}

// StatePayload is the full view of the container.
type StatePayload struct {
	SessionID string             `json:"session_id"`
	Owner     string             `json:"owner"`
	Grid      inventory.Snapshot `json:"grid"`
	Held      *HeldStack         `json:"held,omitempty"`
	FreeCells int                `json:"free_cells"`
	Render    string             `json:"render"`
}

// ResultPayload reports a successful intent.
type ResultPayload struct {
	Placements []PlacementView          `json:"placements,omitempty"`
	Stack      *inventory.StackSnapshot `json:"stack,omitempty"`
	Held       *HeldStack               `json:"held,omitempty"`
	Removed    int                      `json:"removed,omitempty"`
	Leftover   int                      `json:"leftover,omitempty"`
	Exists     *bool                    `json:"exists,omitempty"`
	Count      *int                     `json:"count,omitempty"`
	Items      []inventory.ItemType     `json:"items,omitempty"`
	State      *StatePayload            `json:"state,omitempty"`
}

// PlacementView is one committed placement of an add.
type PlacementView struct {
	Item     inventory.ItemCode `json:"item"`
	Amount   int                `json:"amount"`
	Position inventory.Cell     `json:"position"`
	Rotation inventory.Rotation `json:"rotation"`
	Cells    inventory.CellSet  `json:"cells"`
	New      bool               `json:"new"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
