package catalog

// Media kinds attachable to the question or answer side of a question.
const (
	MediaText  = "text"
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Category is a drafted topic. Immutable for the duration of a game session.
type Category struct {
	ID            string `json:"id"`
	NameAr        string `json:"name_ar"`
	NameEn        string `json:"name_en"`
	ImageURL      string `json:"image_url,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
	DescriptionEn string `json:"description_en,omitempty"`
}

// Media describes an attachment shown alongside question or answer text.
// DurationSeconds applies to timed media (video/audio).
type Media struct {
	Kind            string `json:"kind"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// Question is one authored board question. Points is the tier the question
// belongs to; QuestionMedia and AnswerMedia are independent attachments.
type Question struct {
	ID            string `json:"id"`
	CategoryID    string `json:"category_id"`
	QuestionAr    string `json:"question_ar"`
	QuestionEn    string `json:"question_en"`
	AnswerAr      string `json:"answer_ar"`
	AnswerEn      string `json:"answer_en"`
	Points        int    `json:"points"`
	QuestionMedia *Media `json:"question_media,omitempty"`
	AnswerMedia   *Media `json:"answer_media,omitempty"`
}
