package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/etm-murmansk/site/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, raw string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestPayload_Accessors(t *testing.T) {
	p := payload(t, `{"title":"  Мост  ","year":"2021","order":3,"blank":"   ","nil":null,"tags":["a"," ",5,"b"],"flag":true}`)

	assert.True(t, p.Has("title"))
	assert.False(t, p.Has("nil"))
	assert.False(t, p.Has("missing"))

	assert.True(t, p.Blank("blank"))
	assert.True(t, p.Blank("nil"))
	assert.True(t, p.Blank("missing"))
	assert.False(t, p.Blank("order"), "numbers are present")
	assert.False(t, p.Blank("flag"))
	assert.True(t, p.Blank("tags"), "arrays have no text form")
	assert.True(t, payload(t, `{"x":false}`).Blank("x"))
	assert.True(t, payload(t, `{"x":{}}`).Blank("x"))

	assert.Equal(t, "  Мост  ", p.String("title"))
	assert.Equal(t, "3", p.String("order"))
	assert.Equal(t, "", p.String("tags"))

	assert.Equal(t, 2021, p.Int("year", 0))
	assert.Equal(t, 3, p.Int("order", 1))
	assert.Equal(t, 1, p.Int("missing", 1))
	assert.Equal(t, 0, p.Int("title", 1))
	assert.Equal(t, 1, p.Int("flag", 0))

	assert.Equal(t, []string{"a", "b"}, p.Strings("tags"))
	assert.Equal(t, []string{}, p.Strings("title"))
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{`<script>alert("x")</script>`, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"},
		{"Tom & Jerry's", "Tom &amp; Jerry&#039;s"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"https://etm-murmansk.ru/uploads/a.png", true},
		{"http://example.com", true},
		{"not a url", false},
		{"uploads/2024-05/img_a.png", false},
		{"://missing-scheme", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidURL(tt.in))
		})
	}
}

func TestViolations(t *testing.T) {
	var v Violations
	assert.NoError(t, v.Err())

	v.Require(payload(t, `{"title":""}`), "title", "category")
	v.Add("Некорректный год")

	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Поле 'title' обязательно, Поле 'category' обязательно, Некорректный год", apperr.PublicMessage(err))
}

func TestReadPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantLen int
	}{
		{"object", `{"title":"X","year":2025}`, false, 2},
		{"empty body", "", false, 0},
		{"whitespace", "  \n", false, 0},
		{"null", "null", false, 0},
		{"array", `[1,2]`, true, 0},
		{"broken", `{"title":`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadPayload(strings.NewReader(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
				assert.Equal(t, apperr.MsgInvalidJSON, apperr.PublicMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, p, tt.wantLen)
		})
	}
}
