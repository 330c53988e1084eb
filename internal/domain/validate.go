package domain

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Prepare applies the document-level invariants before a save: missing
// day-types fall back to the defaults and period ranges must be ordered.
func (c *Content) Prepare() error {
	if !c.Pricing.Empty() && len(c.Pricing.DayTypes) == 0 {
		c.Pricing.DayTypes = DefaultDayTypes()
	}
	for i, dt := range c.Pricing.DayTypes {
		if strings.TrimSpace(dt.ID) == "" {
			return fmt.Errorf("%w: day-type %d has no id", ErrInvalid, i+1)
		}
	}
	if err := checkRange("sale", c.Period.SaleStart, c.Period.SaleEnd); err != nil {
		return err
	}
	return checkRange("stay", c.Period.StayStart, c.Period.StayEnd)
}

func checkRange(name, start, end string) error {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = time.Parse(dateLayout, start); err != nil {
			return fmt.Errorf("%w: %s start %q is not YYYY-MM-DD", ErrInvalid, name, start)
		}
	}
	if end != "" {
		if e, err = time.Parse(dateLayout, end); err != nil {
			return fmt.Errorf("%w: %s end %q is not YYYY-MM-DD", ErrInvalid, name, end)
		}
	}
	if start != "" && end != "" && e.Before(s) {
		return fmt.Errorf("%w: %s period ends before it starts", ErrInvalid, name)
	}
	return nil
}
