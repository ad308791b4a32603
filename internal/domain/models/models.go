package models

// Файл с моделями, которые разделяют хранилища, движок квиза и HTTP слой.
// Хранилище создаёт экземпляры Question, движок квиза их только читает.

// Question определяет вопрос с четырьмя вариантами ответа.
type Question struct {
	ID            int64  `json:"id" bson:"_id"`
	Text          string `json:"question_text" bson:"question_text"`
	CorrectAnswer string `json:"correct_answer" bson:"correct_answer"`
	Option1       string `json:"option1" bson:"option1"`
	Option2       string `json:"option2" bson:"option2"`
	Option3       string `json:"option3" bson:"option3"`
	Option4       string `json:"option4" bson:"option4"`
}

// Options возвращает варианты ответа в порядке хранения.
func (q Question) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}

// QuestionInput содержит поля нового вопроса, все поля обязательны.
type QuestionInput struct {
	Text          string `json:"question_text" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
	Option1       string `json:"option1" validate:"required"`
	Option2       string `json:"option2" validate:"required"`
	Option3       string `json:"option3" validate:"required"`
	Option4       string `json:"option4" validate:"required"`
}

// WithID собирает сохранённый вопрос из входных данных и присвоенного id.
func (in QuestionInput) WithID(id int64) Question {
	return Question{
		ID:            id,
		Text:          in.Text,
		CorrectAnswer: in.CorrectAnswer,
		Option1:       in.Option1,
		Option2:       in.Option2,
		Option3:       in.Option3,
		Option4:       in.Option4,
	}
}
