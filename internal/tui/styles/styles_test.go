package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedStylesLeaveBaseUntouched(t *testing.T) {
	_ = AppStyle.Width(40).Height(10).Render("x")
	assert.Zero(t, AppStyle.GetWidth())
	assert.Zero(t, AppStyle.GetHeight())

	assert.NotEqual(t, PaneStyle.GetBorderTopForeground(), PaneFocusedStyle.GetBorderTopForeground())
	assert.NotEqual(t, InputFieldStyle.GetBorderTopForeground(), InputFieldFocusedStyle.GetBorderTopForeground())
}
