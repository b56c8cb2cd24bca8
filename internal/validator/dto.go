package validator

// SubmitAttemptRequest is the body of an attempt submission. Keys are question
// ids; values may be numbers or strings. Malformed entries are not rejected here,
// they simply score as incorrect.
type SubmitAttemptRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

type QuizListQuery struct {
	SubjectID *uint `form:"subject_id" validate:"omitempty,gt=0"`
	ChapterID *uint `form:"chapter_id" validate:"omitempty,gt=0"`
}

type ChapterListQuery struct {
	SubjectID *uint `form:"subject_id" validate:"omitempty,gt=0"`
}

type SearchQuery struct {
	Query string `form:"q" validate:"max=100"`
}
