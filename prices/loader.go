package prices

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/thrasher-corp/strategyfit/common/convert"
	"github.com/thrasher-corp/strategyfit/log"
)

const (
	alphaMetaKey    = "Meta Data"
	alphaSymbolKey  = "2. Symbol"
	alphaSeriesKey  = "Time Series"
	alphaOpenField  = "1. open"
	alphaCloseField = "4. close"
)

type timedBar struct {
	stamp string
	bar   Bar
}

// LoadFile reads a price document from disk and returns at most maxBars of its
// most recent bars. Both the native series document and Alpha Vantage
// intraday/daily documents are understood.
func LoadFile(path string, maxBars int) (*Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s = s.Truncate(maxBars)
	log.Debugf(log.DataSource, "loaded %d bars for %s from %s", s.Len(), s.Symbol, path)
	return s, nil
}

// Parse decodes a price document
func Parse(data []byte) (*Series, error) {
	if _, _, _, err := jsonparser.Get(data, alphaMetaKey); err == nil {
		return ParseAlphaVantage(data)
	}
	var s Series
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errUnrecognisedDocument, err)
	}
	return NewSeries(s.Symbol, s.Bars)
}

// ParseAlphaVantage decodes an Alpha Vantage time series document. Bars are
// ordered by their timestamp keys, newest first, regardless of document order.
func ParseAlphaVantage(data []byte) (*Series, error) {
	symbol, err := jsonparser.GetString(data, alphaMetaKey, alphaSymbolKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %v", errUnrecognisedDocument, alphaSymbolKey, err)
	}

	var seriesKey string
	err = jsonparser.ObjectEach(data, func(key, _ []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType == jsonparser.Object && strings.HasPrefix(string(key), alphaSeriesKey) {
			seriesKey = string(key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if seriesKey == "" {
		return nil, fmt.Errorf("%w: no %q object", errUnrecognisedDocument, alphaSeriesKey)
	}

	var bars []timedBar
	err = jsonparser.ObjectEach(data, func(key, value []byte, _ jsonparser.ValueType, _ int) error {
		b, parseErr := parseAlphaBar(value)
		if parseErr != nil {
			return fmt.Errorf("%s %s: %w", symbol, key, parseErr)
		}
		bars = append(bars, timedBar{stamp: string(key), bar: b})
		return nil
	}, seriesKey)
	if err != nil {
		return nil, err
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].stamp > bars[j].stamp
	})
	resp := make([]Bar, len(bars))
	for i := range bars {
		resp[i] = bars[i].bar
	}
	return NewSeries(symbol, resp)
}

func parseAlphaBar(value []byte) (Bar, error) {
	openStr, err := jsonparser.GetString(value, alphaOpenField)
	if err != nil {
		return Bar{}, fmt.Errorf("%w %q", errMissingPrice, alphaOpenField)
	}
	closeStr, err := jsonparser.GetString(value, alphaCloseField)
	if err != nil {
		return Bar{}, fmt.Errorf("%w %q", errMissingPrice, alphaCloseField)
	}
	o, err := convert.FloatFromString(openStr)
	if err != nil {
		return Bar{}, err
	}
	c, err := convert.FloatFromString(closeStr)
	if err != nil {
		return Bar{}, err
	}
	b := Bar{Open: o, Close: c}
	if err := b.Validate(); err != nil {
		return Bar{}, err
	}
	return b, nil
}
