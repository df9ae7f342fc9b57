package handlers

// Константы валидации для предложения мероприятия
const (
	// Название мероприятия
	EventTitleMinLength = 3
	EventTitleMaxLength = 100

	// Описание мероприятия
	EventDescriptionMaxLength = 500

	// Количество мест
	EventMaxCapacity = 1000

	// Символ, которым пропускают необязательный шаг
	SkipStep = "-"
)
