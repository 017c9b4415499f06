package utils

import (
	"math"
	"strconv"
	"strings"

	apperrors "remontbot/pkg/errors"
)

// ParseDecimal разбирает число из пользовательского ввода.
// Запятая принимается как десятичный разделитель наравне с точкой.
// Отрицательные значения, NaN/Inf и мусор отклоняются как ошибка
// валидации: ParseFloat принимает «nan» и «inf», а такие значения не
// сериализуются в JSON-документ каталога.
func ParseDecimal(input string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewInvalidInputError("«%s» не похоже на число. Введите, например: 150.75", input)
	}
	if v < 0 {
		return 0, apperrors.NewInvalidInputError("значение не может быть отрицательным")
	}
	return v, nil
}
