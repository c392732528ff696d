package ledger

import "context"

// Directory answers whether externally owned campuses and students exist.
type Directory interface {
	CampusExists(ctx context.Context, campusID int64) (bool, error)
	StudentExists(ctx context.Context, studentID int64) (bool, error)
}

// StaticDirectory is a Directory over fixed id sets. A nil set accepts every id.
type StaticDirectory struct {
	Campuses map[int64]bool
	Students map[int64]bool
}

func (s StaticDirectory) CampusExists(_ context.Context, campusID int64) (bool, error) {
	if s.Campuses == nil {
		return true, nil
	}
	return s.Campuses[campusID], nil
}

func (s StaticDirectory) StudentExists(_ context.Context, studentID int64) (bool, error) {
	if s.Students == nil {
		return true, nil
	}
	return s.Students[studentID], nil
}

// NewStaticDirectory restricts campuses to ids. Students stay unrestricted.
func NewStaticDirectory(campusIDs []int64) StaticDirectory {
	if len(campusIDs) == 0 {
		return StaticDirectory{}
	}
	campuses := make(map[int64]bool, len(campusIDs))
	for _, id := range campusIDs {
		campuses[id] = true
	}
	return StaticDirectory{Campuses: campuses}
}
