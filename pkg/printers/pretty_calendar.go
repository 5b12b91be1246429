package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"rmoflow/pkg/view"
)

// Calendar prints the month grid for the month containing on, with the
// days that carry at least one event highlighted, then lists the events.
func (pp *PrettyPrint) Calendar(on time.Time, events ...view.CalendarEvent) {
	then := time.Date(on.Year(), on.Month(), 1, 1, 0, 0, 0, time.Local)

	days := DaysIn(then)
	count := make([]int, days)
	for _, e := range events {
		at := e.At.Local()
		if at.Year() == then.Year() && at.Month() == then.Month() {
			count[at.Day()-1]++
		}
	}
	pp.printMonthCount(then, count)

	p := color.New()
	f := color.New(color.Faint)
	for _, e := range events {
		at := e.At.Local()
		if at.Year() != then.Year() || at.Month() != then.Month() {
			continue
		}
		_, _ = f.Printf("%2d  ", at.Day())
		_, _ = p.Println(e.Title)
	}
}

const width = len("11 12 13 14 15 16 17") // an example week

func (pp *PrettyPrint) printMonthCount(then time.Time, count []int) {
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Printf("%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	days := DaysIn(then)

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		fmt.Print("   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < days; i++ {
		if i < len(count) && count[i] > 0 {
			_, _ = l2.Printf("%2d ", i+1)
		} else {
			_, _ = l1.Printf("%2d ", i+1)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			fmt.Print("\n")
		}
	}
	fmt.Print("\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.UTC().Year(), then.UTC().Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.UTC().Year(), then.UTC().Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
