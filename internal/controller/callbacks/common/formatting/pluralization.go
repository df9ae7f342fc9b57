package formatting

// pluralize выбирает форму слова для числа: одна, две-четыре, пять
func pluralize(count int, one, few, many string) string {
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeSeats возвращает правильное склонение слова "место"
func PluralizeSeats(count int) string {
	return pluralize(count, "место", "места", "мест")
}

// PluralizeStudents возвращает правильное склонение слова "студент"
func PluralizeStudents(count int) string {
	return pluralize(count, "студент", "студента", "студентов")
}

// PluralizeEvents возвращает правильное склонение слова "мероприятие"
func PluralizeEvents(count int) string {
	return pluralize(count, "мероприятие", "мероприятия", "мероприятий")
}
