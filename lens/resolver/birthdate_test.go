package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBirthDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"dashed", "born 1985-03-09", "1985-03-09"},
		{"dashed unpadded", "1985-3-9", "1985-03-09"},
		{"slashed", "dob 1990/11/02", "1990-11-02"},
		{"dotted", "1990.1.2", "1990-01-02"},
		{"compact", "19851230 in Shanghai", "1985-12-30"},
		{"cjk full", "他1985年3月9日出生", "1985-03-09"},
		{"cjk without day suffix", "1985年3月9", "1985-03-09"},
		{"embedded in sentence", "出生日期是1985-03-09，在上海", "1985-03-09"},
		{"no date", "I don't remember", ""},
		{"impossible calendar date", "1985-13-40", ""},
		{"compact non-date digits", "12345678", ""},
		{"compact inside longer digit run", "电话198501234567", ""},
		{"compact prefix of id number", "19851230123456", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractBirthDate(tc.in))
		})
	}
}

func TestExtractBirthDate_SeparatedFormTakesPriority(t *testing.T) {
	// Both a separated and a compact form present: the separated form wins.
	assert.Equal(t, "1985-03-09", ExtractBirthDate("1985-03-09 or 19901102"))
}

func TestExtractBirthDate_InvalidFormFallsThroughToNext(t *testing.T) {
	// The separated match is not a calendar date, so the compact form is
	// still consulted.
	assert.Equal(t, "1990-01-01", ExtractBirthDate("1985-13-40 19900101"))
	// And likewise down to the CJK form.
	assert.Equal(t, "1990-01-01", ExtractBirthDate("1985-13-40 1990年1月1日"))
}

func TestIsSkipAnswer(t *testing.T) {
	for _, in := range []string{"跳过", "不用", "skip", "no", " Skip ", "NO"} {
		assert.True(t, IsSkipAnswer(in), in)
	}
	for _, in := range []string{"", "not now", "skip it", "不知道", "1985-03-09"} {
		assert.False(t, IsSkipAnswer(in), in)
	}
}
