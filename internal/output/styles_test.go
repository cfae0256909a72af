package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.Color
		wantDim  bool
	}{
		{
			name:   "created returns green",
			status: StatusCreated,
			wantFG: colorGreen,
		},
		{
			name:   "updated returns yellow",
			status: StatusUpdated,
			wantFG: ColorYellow,
		},
		{
			name:    "unchanged returns faint",
			status:  StatusUnchanged,
			wantDim: true,
		},
		{
			name:   "valid returns green",
			status: StatusValid,
			wantFG: colorGreen,
		},
		{
			name:     "failed returns bold red",
			status:   statusFailed,
			wantBold: true,
			wantFG:   colorBoldRed,
		},
		{
			name:   "unknown returns default unstyled",
			status: "unknown-value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := statusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != "" {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatComponentLine(t *testing.T) {
	result := FormatComponentLine("1", "cm", StatusCreated)

	assert.Contains(t, result, "1/cm")
	assert.Contains(t, result, StatusCreated)
	assert.True(t, strings.HasPrefix(stripAnsi(result), "c:"), "should start with c: prefix")

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := FormatComponentLine("1", "cm", StatusCreated)
		line2 := FormatComponentLine("12", "scheduler_root", StatusCreated)

		idx1 := strings.Index(stripAnsi(line1), StatusCreated)
		idx2 := strings.Index(stripAnsi(line2), StatusCreated)

		assert.Equal(t, idx1, idx2, "status words should align to same column")
	})
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("System built")
	assert.Contains(t, result, "✔", "should contain checkmark")
	assert.Contains(t, result, "System built", "should contain message")
}

func TestStatusValidSameColorAsCreated(t *testing.T) {
	assert.Equal(t, statusStyle(StatusCreated).GetForeground(), statusStyle(StatusValid).GetForeground(),
		"valid and created should have the same color")
}

func TestFormatVetCheck(t *testing.T) {
	t.Run("without detail", func(t *testing.T) {
		result := FormatVetCheck("Resource invariants hold", "")
		assert.Contains(t, result, "✔")
		assert.False(t, strings.HasSuffix(stripAnsi(result), " "), "no trailing whitespace when detail is empty")
	})

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := FormatVetCheck("Schema valid", "system.toml")
		line2 := FormatVetCheck("Resource invariants hold", "3 components")

		idx1 := strings.Index(stripAnsi(line1), "system.toml")
		idx2 := strings.Index(stripAnsi(line2), "3 components")

		assert.Equal(t, idx1, idx2, "detail text should align to same column")
	})
}

// stripAnsi removes ANSI escape sequences for content assertions.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
