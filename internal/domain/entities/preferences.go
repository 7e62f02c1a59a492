package entities

import "fmt"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: theme %q", ErrUnsupported, s)
}
