package prices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphaDocument = `{
	"Meta Data": {
		"1. Information": "Intraday (5min) open, high, low, close prices and volume",
		"2. Symbol": "IBM",
		"4. Interval": "5min"
	},
	"Time Series (5min)": {
		"2024-01-02 09:35:00": {"1. open": "160.0000", "2. high": "161.0", "3. low": "159.0", "4. close": "160.5000", "5. volume": "1000"},
		"2024-01-02 09:45:00": {"1. open": "161.0000", "2. high": "162.0", "3. low": "160.0", "4. close": "161.5000", "5. volume": "1000"},
		"2024-01-02 09:40:00": {"1. open": "160.5000", "2. high": "161.0", "3. low": "160.0", "4. close": "161.0000", "5. volume": "1000"}
	}
}`

func TestParseAlphaVantage(t *testing.T) {
	t.Parallel()
	s, err := Parse([]byte(alphaDocument))
	require.NoError(t, err)
	assert.Equal(t, "IBM", s.Symbol)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, Bar{Open: 161, Close: 161.5}, s.Bars[0], "newest bar first")
	assert.Equal(t, Bar{Open: 160, Close: 160.5}, s.Bars[2])

	_, err = ParseAlphaVantage([]byte(`{"Meta Data": {"2. Symbol": "IBM"}}`))
	assert.ErrorIs(t, err, errUnrecognisedDocument)

	_, err = ParseAlphaVantage([]byte(`{"Meta Data": {"2. Symbol": "IBM"}, "Time Series (Daily)": {"2024-01-02": {"1. open": "1"}}}`))
	assert.ErrorIs(t, err, errMissingPrice)

	for _, price := range []string{"NaN", "Inf", "-Inf", "0", "-1.5"} {
		doc := `{"Meta Data": {"2. Symbol": "IBM"}, "Time Series (Daily)": {"2024-01-02": {"1. open": "` + price + `", "4. close": "1"}}}`
		_, err = ParseAlphaVantage([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidPrice, price)
	}
}

func TestParseNative(t *testing.T) {
	t.Parallel()
	s, err := Parse([]byte(`{"symbol":"TSLA","bars":[{"open":2,"close":3},{"open":1,"close":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, "TSLA", s.Symbol)
	assert.Equal(t, 2, s.Len())

	_, err = Parse([]byte(`{"symbol":"TSLA","bars":[]}`))
	assert.ErrorIs(t, err, ErrNoBars)

	_, err = Parse([]byte(`{"symbol":"TSLA","bars":[{"open":0,"close":3}]}`))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Parse([]byte(`not json`))
	assert.ErrorIs(t, err, errUnrecognisedDocument)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ibm.json")
	require.NoError(t, os.WriteFile(path, []byte(alphaDocument), 0o600))

	s, err := LoadFile(path, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 161.5, s.Latest().Close)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), 2)
	assert.Error(t, err)
}
