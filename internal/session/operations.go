package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
)

// DocumentState holds the authoritative diagram of a room. Operations are
// applied in arrival order, last write wins.
type DocumentState struct {
	mu        sync.Mutex
	engine    *engine.Engine
	serverSeq int64
	dirty     bool
}

// Result describes an applied operation.
type Result struct {
	ServerSeq int64
	ItemID    string
	Angle     *float64
	Notices   []diagram.Notice
}

// NewDocumentState rebuilds the diagram of doc.
func NewDocumentState(doc *document.Diagram) (*DocumentState, error) {
	e := engine.NewEngine()
	if err := e.LoadRecord(doc); err != nil {
		return nil, err
	}
	e.TakeNotices()
	return &DocumentState{engine: e}, nil
}

// Document returns the current record and the sequence number it reflects.
func (ds *DocumentState) Document() (*document.Diagram, int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.engine.Document(), ds.serverSeq
}

// TakeDirty returns the record and clears the dirty flag if any operation
// changed the diagram since the last call.
func (ds *DocumentState) TakeDirty() (*document.Diagram, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return nil, false
	}
	ds.dirty = false
	return ds.engine.Document(), true
}

// MarkDirty flags the diagram for the next save, after a failed one.
func (ds *DocumentState) MarkDirty() {
	ds.mu.Lock()
	ds.dirty = true
	ds.mu.Unlock()
}

// ApplyOperation applies op and returns the new sequence number together
// with the redraw notices it caused. component.create fills in op's
// component id when the client left it empty.
func (ds *DocumentState) ApplyOperation(op *Operation) (*Result, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	res := &Result{}
	if err := ds.applyOperationLocked(op, res); err != nil {
		ds.engine.TakeNotices()
		return nil, err
	}

	ds.serverSeq++
	if op.Type != OpSelectionSet {
		ds.dirty = true
	}
	res.ServerSeq = ds.serverSeq
	res.Notices = ds.engine.TakeNotices()
	return res, nil
}

func (ds *DocumentState) applyOperationLocked(op *Operation, res *Result) error {
	switch op.Type {
	case OpDiagramUpdate:
		if len(op.Changes) == 0 {
			return fmt.Errorf("%w: no changes", ErrInvalidOperation)
		}
		ds.engine.UpdateSettings(op.Changes)
		return nil
	case OpComponentCreate:
		return ds.applyCreate(op, res)
	case OpComponentUpdate:
		if len(op.Changes) == 0 {
			return fmt.Errorf("%w: no changes", ErrInvalidOperation)
		}
		res.ItemID = op.ItemID
		return ds.engine.UpdateComponent(op.ItemID, op.Changes)
	case OpComponentRotate:
		angle, err := ds.engine.RotateComponent(op.ItemID, op.Delta)
		if err != nil {
			return err
		}
		res.ItemID = op.ItemID
		res.Angle = &angle
		return nil
	case OpItemRemove:
		res.ItemID = op.ItemID
		return ds.engine.RemoveItem(op.ItemID)
	case OpSelectionSet:
		if op.ItemID != "" {
			if _, ok := ds.engine.Diagram().GetItem(op.ItemID); !ok {
				return fmt.Errorf("%w: %s", engine.ErrItemNotFound, op.ItemID)
			}
		}
		ds.engine.SetSelection(op.ItemID)
		res.ItemID = op.ItemID
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func (ds *DocumentState) applyCreate(op *Operation, res *Result) error {
	if op.Component == nil {
		return fmt.Errorf("%w: missing component", ErrInvalidOperation)
	}

	spec := *op.Component
	if spec.ID == "" {
		spec.ID = ds.engine.GenerateUniqueID()
	} else if _, taken := ds.engine.Diagram().GetItem(spec.ID); taken {
		return fmt.Errorf("%w: id %s is taken", ErrInvalidOperation, spec.ID)
	}

	res.ItemID = ds.engine.CreateComponent(spec)
	op.Component = &spec
	return nil
}
