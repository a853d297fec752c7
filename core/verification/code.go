package verification

import (
	"regexp"
	"strings"
)

// CodeLength is the number of digits in a one-time code.
const CodeLength = 6

var (
	slotPattern  = regexp.MustCompile(`^[0-9]?$`)
	pastePattern = regexp.MustCompile(`^\d{1,6}$`)
)

// Code is the state of the six code inputs. The zero value is empty with
// focus on the first slot. Code is not safe for concurrent use.
type Code struct {
	slots [CodeLength]string
	focus int
}

// Input sets slot i to v. Values other than a single digit or "" are
// rejected and leave the code unchanged. A digit moves focus to the next slot.
func (c *Code) Input(i int, v string) bool {
	if i < 0 || i >= CodeLength || !slotPattern.MatchString(v) {
		return false
	}
	c.slots[i] = v
	c.focus = i
	if v != "" && i < CodeLength-1 {
		c.focus = i + 1
	}
	return true
}

// Backspace handles the backspace key in slot i. A filled slot is cleared;
// an empty slot moves focus to the previous one.
func (c *Code) Backspace(i int) {
	if i < 0 || i >= CodeLength {
		return
	}
	if c.slots[i] != "" {
		c.slots[i] = ""
		c.focus = i
		return
	}
	if i > 0 {
		c.focus = i - 1
	}
}

// Paste fills the slots from the left with s when s is one to six digits.
// Remaining slots are emptied and focus lands on the last filled slot.
func (c *Code) Paste(s string) bool {
	if !pastePattern.MatchString(s) {
		return false
	}
	for i := range c.slots {
		c.slots[i] = ""
		if i < len(s) {
			c.slots[i] = s[i : i+1]
		}
	}
	c.focus = len(s) - 1
	return true
}

// Focus returns the index of the focused slot.
func (c *Code) Focus() int {
	return c.focus
}

// Slots returns a copy of the slot values.
func (c *Code) Slots() [CodeLength]string {
	return c.slots
}

// String concatenates the slots.
func (c *Code) String() string {
	return strings.Join(c.slots[:], "")
}

// Complete reports whether every slot holds a digit.
func (c *Code) Complete() bool {
	for _, s := range c.slots {
		if s == "" {
			return false
		}
	}
	return true
}

// Clear empties every slot and focuses the first one.
func (c *Code) Clear() {
	*c = Code{}
}
