package model

import "time"

// PuzzleType identifies the kind of puzzle stored.
type PuzzleType string

// Supported puzzle types.
const (
	PuzzleSudoku     PuzzleType = "sudoku"
	PuzzleWordSearch PuzzleType = "wordsearch"
	PuzzleMaze       PuzzleType = "maze"
	PuzzleNonogram   PuzzleType = "nonogram"
)

// ValidPuzzleType reports whether t is a known puzzle type.
func ValidPuzzleType(t PuzzleType) bool {
	switch t {
	case PuzzleSudoku, PuzzleWordSearch, PuzzleMaze, PuzzleNonogram:
		return true
	}
	return false
}

// Difficulty is an optional difficulty label attached by the client.
type Difficulty string

// Difficulty labels.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Puzzle is a generated puzzle owned by a user. The SVG payloads are stored
// opaquely; generation happens client-side.
type Puzzle struct {
	ID          string     `json:"id"`
	FrontendID  string     `json:"frontendId"`
	UserID      string     `json:"userId"`
	Type        PuzzleType `json:"type"`
	PuzzleSVG   string     `json:"puzzleSvg"`
	SolutionSVG string     `json:"solutionSvg"`
	Difficulty  Difficulty `json:"metaDifficulty,omitempty"`
	Tags        []string   `json:"tags"`
	IsPublic    bool       `json:"isPublic"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
