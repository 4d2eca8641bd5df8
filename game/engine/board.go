package engine

import (
	"fmt"
	"sort"
)

// Board is the per-session directed graph of spaces
type Board struct {
	StartID int      `json:"start_id"`
	Spaces  []*Space `json:"spaces"`

	index map[int]*Space
}

// NewBoard builds a fresh board (all spaces unowned, level 0) from a validated layout.
// Base rent is derived from the price unless the layout sets one explicitly.
func NewBoard(layout []SpaceConfig, startID int, rules Rules) (*Board, error) {
	if err := ValidateBoard(layout, startID); err != nil {
		return nil, err
	}

	b := &Board{StartID: startID, Spaces: make([]*Space, 0, len(layout))}
	for _, sc := range layout {
		sp := &Space{
			ID:         sc.ID,
			Name:       sc.Name,
			Kind:       sc.Kind,
			District:   sc.District,
			Successors: append([]int(nil), sc.Successors...),
		}
		if sc.Kind == KindOwnable {
			sp.BasePrice = sc.Price
			sp.BaseRent = sc.Rent
			if sp.BaseRent == 0 {
				sp.BaseRent = DeriveRent(sc.Price, rules.RentRatio)
			}
		}
		b.Spaces = append(b.Spaces, sp)
	}
	b.reindex()
	return b, nil
}

func (b *Board) reindex() {
	b.index = make(map[int]*Space, len(b.Spaces))
	for _, sp := range b.Spaces {
		b.index[sp.ID] = sp
	}
}

// Space returns the space with the given id
func (b *Board) Space(id int) (*Space, bool) {
	if b == nil {
		return nil, false
	}
	// The index is not serialized; rebuild it after a restore.
	if len(b.index) != len(b.Spaces) {
		b.reindex()
	}
	sp, ok := b.index[id]
	return sp, ok
}

// Start returns the start space
func (b *Board) Start() *Space {
	sp, _ := b.Space(b.StartID)
	return sp
}

// OwnedBy returns the spaces held by a player, ordered by id
func (b *Board) OwnedBy(playerID int) []*Space {
	var out []*Space
	for _, sp := range b.Spaces {
		if sp.OwnerID != nil && *sp.OwnerID == playerID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Release returns every space held by the player to the bank at level 0
func (b *Board) Release(playerID int) []int {
	var released []int
	for _, sp := range b.OwnedBy(playerID) {
		sp.OwnerID = nil
		sp.UpgradeLevel = 0
		released = append(released, sp.ID)
	}
	return released
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := &Board{StartID: b.StartID, Spaces: make([]*Space, len(b.Spaces))}
	for i, sp := range b.Spaces {
		cp := *sp
		cp.Successors = append([]int(nil), sp.Successors...)
		if sp.OwnerID != nil {
			owner := *sp.OwnerID
			cp.OwnerID = &owner
		}
		out.Spaces[i] = &cp
	}
	out.reindex()
	return out
}

// ValidateBoard checks the graph invariants: unique ids, a single start,
// existing successors, reachability from start and that every walk returns
// to start.
func ValidateBoard(layout []SpaceConfig, startID int) error {
	if len(layout) == 0 {
		return fmt.Errorf("board validation: at least one space is required")
	}
	if len(layout) > MaxBoardSize {
		return fmt.Errorf("board validation: at most %d spaces allowed, got %d", MaxBoardSize, len(layout))
	}

	byID := make(map[int]SpaceConfig, len(layout))
	starts := 0
	for _, sc := range layout {
		if _, dup := byID[sc.ID]; dup {
			return fmt.Errorf("board validation: duplicate space id %d", sc.ID)
		}
		byID[sc.ID] = sc

		if !sc.Kind.Valid() {
			return fmt.Errorf("board validation: space %d has unknown kind %q", sc.ID, sc.Kind)
		}
		if sc.Kind == KindStart {
			starts++
		}
		if sc.Kind == KindOwnable && sc.Price <= 0 {
			return fmt.Errorf("board validation: ownable space %d must have a positive price", sc.ID)
		}
		if sc.Kind != KindOwnable && (sc.Price != 0 || sc.Rent != 0) {
			return fmt.Errorf("board validation: space %d is %s and cannot carry a price", sc.ID, sc.Kind)
		}
		if sc.Rent < 0 {
			return fmt.Errorf("board validation: space %d has negative rent", sc.ID)
		}
	}

	if starts != 1 {
		return fmt.Errorf("board validation: exactly one start space required, got %d", starts)
	}
	start, ok := byID[startID]
	if !ok || start.Kind != KindStart {
		return fmt.Errorf("board validation: start_space %d is not the start space", startID)
	}

	for _, sc := range layout {
		if len(sc.Successors) == 0 {
			return fmt.Errorf("board validation: space %d has no successors", sc.ID)
		}
		seen := make(map[int]bool, len(sc.Successors))
		for _, next := range sc.Successors {
			if _, ok := byID[next]; !ok {
				return fmt.Errorf("board validation: space %d points to unknown space %d", sc.ID, next)
			}
			if next == sc.ID {
				return fmt.Errorf("board validation: space %d points to itself", sc.ID)
			}
			if seen[next] {
				return fmt.Errorf("board validation: space %d lists successor %d twice", sc.ID, next)
			}
			seen[next] = true
		}
	}

	// Every space must be reachable from start.
	reached := map[int]bool{startID: true}
	queue := []int{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range byID[id].Successors {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, sc := range layout {
		if !reached[sc.ID] {
			return fmt.Errorf("board validation: space %d is unreachable from start", sc.ID)
		}
	}

	// With the edges into start removed the graph must be acyclic, otherwise
	// some walk could loop forever without passing start.
	const (
		white = iota
		grey
		black
	)
	color := make(map[int]int, len(layout))
	var visit func(id int) error
	visit = func(id int) error {
		color[id] = grey
		for _, next := range byID[id].Successors {
			if next == startID {
				continue
			}
			switch color[next] {
			case grey:
				return fmt.Errorf("board validation: cycle through space %d never returns to start", next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	return visit(startID)
}
