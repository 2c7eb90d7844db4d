package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/sanitizer"
)

func TestText(t *testing.T) {
	t.Parallel()

	clean := sanitizer.Text(10)
	assert.Equal(t, "Ana Maria", clean("  <b>Ana</b>\r\n  Maria "))
	assert.Equal(t, "O'Brien", clean("O&#39;Brien"))
	assert.Equal(t, "abcdefghij", clean("abcdefghijklmnop"))
	assert.Equal(t, "x", clean("x\x00\x07"))
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ana.b@example.com", sanitizer.NormalizeEmail("  Ana..B@Example.COM "))
	assert.Equal(t, "not-an-email", sanitizer.NormalizeEmail("Not-An-Email"))
	assert.Equal(t, "a@b@c", sanitizer.NormalizeEmail("a@b@c"))
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+14155550100", sanitizer.NormalizePhone(" +1 (415) 555-0100 "))
	assert.Equal(t, "4155550100", sanitizer.NormalizePhone("415.555.0100"))
	assert.Equal(t, "", sanitizer.NormalizePhone(" "))
}

func TestTokens(t *testing.T) {
	t.Parallel()

	got := sanitizer.Tokens([]string{" Hiking", "hiking", "", "SKIING "}, sanitizer.Compose(sanitizer.Trim, sanitizer.ToLower))
	assert.Equal(t, []string{"hiking", "skiing"}, got)
}

func TestApply(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", sanitizer.Apply(" ABC ", sanitizer.Trim, sanitizer.ToLower))
	assert.Equal(t, "", sanitizer.MaxLength(0)("abc"))
}
