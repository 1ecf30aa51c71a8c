package operator

import (
	"fmt"
	"time"

	"github.com/jaf-ql/jaf/internal/value"
)

// Dates travel through the value model as RFC 3339 strings. Parsing accepts
// RFC 3339 plus the date and datetime layouts the query syntax produces.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (r *Registry) registerDatetime() {
	r.register("now", Transformer, 0, 0, func(_ []value.Value) (value.Value, error) {
		return value.String(time.Now().UTC().Format(time.RFC3339)), nil
	})

	r.register("date", Transformer, 1, 1, parseDate("date", "2006-01-02"))
	r.register("datetime", Transformer, 1, 1, parseDate("datetime", "2006-01-02 15:04:05"))

	r.register("timestamp", Transformer, 1, 1, func(args []value.Value) (value.Value, error) {
		seconds, err := requireNumber("timestamp", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(time.Unix(int64(seconds), 0).UTC().Format(time.RFC3339)), nil
	})

	r.register("format-date", Transformer, 2, 2, func(args []value.Value) (value.Value, error) {
		t, err := requireTime("format-date", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		layout, err := requireString("format-date", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(t.Format(layout)), nil
	})

	r.register("add-time", Transformer, 2, 2, shiftTime("add-time", 1))
	r.register("sub-time", Transformer, 2, 2, shiftTime("sub-time", -1))

	r.register("diff-time", Transformer, 2, 2, func(args []value.Value) (value.Value, error) {
		a, err := requireTime("diff-time", args, 0)
		if err != nil {
			return value.Value{}, err
		}
		b, err := requireTime("diff-time", args, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(a.Sub(b).Seconds()), nil
	})
}

func parseDate(name, layout string) Func {
	return func(args []value.Value) (value.Value, error) {
		s, err := requireString(name, args, 0)
		if err != nil {
			return value.Value{}, err
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %q cannot parse %q: %v", ErrType, name, s, err)
		}
		return value.String(t.UTC().Format(time.RFC3339)), nil
	}
}

func shiftTime(name string, sign float64) Func {
	return func(args []value.Value) (value.Value, error) {
		t, err := requireTime(name, args, 0)
		if err != nil {
			return value.Value{}, err
		}
		seconds, err := requireNumber(name, args, 1)
		if err != nil {
			return value.Value{}, err
		}
		shifted := t.Add(time.Duration(sign*seconds) * time.Second)
		return value.String(shifted.UTC().Format(time.RFC3339)), nil
	}
}

func requireTime(name string, args []value.Value, pos int) (time.Time, error) {
	s, err := requireString(name, args, pos)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q cannot parse %q as a date", ErrType, name, s)
}
