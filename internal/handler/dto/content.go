package dto

// PuzzleMeta is the optional metadata block on puzzle creation.
type PuzzleMeta struct {
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// CreatePuzzleRequest represents the request body for storing a puzzle.
type CreatePuzzleRequest struct {
	Type        string      `json:"type"`
	PuzzleSVG   string      `json:"puzzleSvg"`
	SolutionSVG string      `json:"solutionSvg"`
	Meta        *PuzzleMeta `json:"meta,omitempty"`
	IsPublic    bool        `json:"isPublic,omitempty"`
}

// CreateBookRequest represents the request body for creating a book.
type CreateBookRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
