package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"wedding-invitation/internal/apperr"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/service"
)

const divider = "------------------------------------------------------------"

// console is the couple's menu for reviewing responses.
type console struct {
	svc     *service.Service
	scanner *bufio.Scanner
	out     io.Writer
}

func newConsole(svc *service.Service, in io.Reader, out io.Writer) *console {
	return &console{svc: svc, scanner: bufio.NewScanner(in), out: out}
}

// run shows the menu until the user exits, input ends or ctx is done.
func (c *console) run(ctx context.Context) {
	for ctx.Err() == nil {
		fmt.Fprintln(c.out, "\nCommands:")
		fmt.Fprintln(c.out, "  1. View all RSVPs")
		fmt.Fprintln(c.out, "  2. View RSVPs by attendance")
		fmt.Fprintln(c.out, "  3. View statistics")
		fmt.Fprintln(c.out, "  4. View wishes")
		fmt.Fprintln(c.out, "  5. Delete an RSVP")
		fmt.Fprintln(c.out, "  6. Exit")
		fmt.Fprint(c.out, "\nEnter command (1-6): ")

		if !c.scanner.Scan() {
			return
		}

		switch strings.TrimSpace(c.scanner.Text()) {
		case "1":
			c.listRSVPs(ctx, "")
		case "2":
			c.listByAttendance(ctx)
		case "3":
			c.stats(ctx)
		case "4":
			c.wishes(ctx)
		case "5":
			c.deleteRSVP(ctx)
		case "6":
			fmt.Fprintln(c.out, "Exiting...")
			return
		default:
			fmt.Fprintln(c.out, "Invalid command. Please try again.")
		}
	}
}

func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

func (c *console) listByAttendance(ctx context.Context) {
	fmt.Fprintln(c.out, "\nSelect attendance:")
	for i, a := range models.Attendances {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, a)
	}

	choice, ok := c.prompt(fmt.Sprintf("Enter choice (1-%d): ", len(models.Attendances)))
	if !ok {
		return
	}
	var n int
	if _, err := fmt.Sscanf(choice, "%d", &n); err != nil || n < 1 || n > len(models.Attendances) {
		fmt.Fprintln(c.out, "Invalid choice.")
		return
	}
	c.listRSVPs(ctx, string(models.Attendances[n-1]))
}

func (c *console) listRSVPs(ctx context.Context, attendance string) {
	rsvps, err := c.svc.ListRSVPs(ctx, attendance)
	if err != nil {
		c.printError(err)
		return
	}
	if len(rsvps) == 0 {
		fmt.Fprintln(c.out, "\nNo RSVPs found.")
		return
	}

	fmt.Fprintf(c.out, "\n📋 RSVPs (%d total):\n", len(rsvps))
	fmt.Fprintln(c.out, divider)
	for _, r := range rsvps {
		fmt.Fprintf(c.out, "ID: %s\n", r.ID)
		fmt.Fprintf(c.out, "Name: %s\n", r.Name)
		fmt.Fprintf(c.out, "Phone: %s\n", r.Phone)
		fmt.Fprintf(c.out, "Attendance: %s (%d guests)\n", r.Attendance, r.Guests)
		if r.Allergies != "" {
			fmt.Fprintf(c.out, "Allergies: %s\n", r.Allergies)
		}
		if r.Message != "" {
			fmt.Fprintf(c.out, "Message: %s\n", r.Message)
		}
		fmt.Fprintf(c.out, "RSVP Date: %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintln(c.out, divider)
	}
}

func (c *console) stats(ctx context.Context) {
	s, err := c.svc.Stats(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "\n📊 Total RSVPs: %d\n", s.Total)
	fmt.Fprintf(c.out, "%s: %d\n", models.AttendanceAttending, s.Attending)
	fmt.Fprintf(c.out, "%s: %d\n", models.AttendanceNotAttending, s.NotAttending)
	fmt.Fprintf(c.out, "%s: %d\n", models.AttendanceMaybe, s.Maybe)
	fmt.Fprintf(c.out, "Total guests: %d\n", s.TotalGuests)
}

func (c *console) wishes(ctx context.Context) {
	wishes, err := c.svc.ListWishes(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	if len(wishes) == 0 {
		fmt.Fprintln(c.out, "\nNo wishes yet.")
		return
	}

	fmt.Fprintf(c.out, "\n💌 Wishes (%d total):\n", len(wishes))
	fmt.Fprintln(c.out, divider)
	for _, w := range wishes {
		fmt.Fprintf(c.out, "%s (%s)\n", w.Name, w.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintln(c.out, w.Message)
		fmt.Fprintln(c.out, divider)
	}
}

func (c *console) deleteRSVP(ctx context.Context) {
	id, ok := c.prompt("Enter RSVP ID: ")
	if !ok || id == "" {
		return
	}
	confirm, ok := c.prompt(fmt.Sprintf("Delete RSVP %s? (y/N): ", id))
	if !ok || !strings.EqualFold(confirm, "y") {
		fmt.Fprintln(c.out, "Cancelled.")
		return
	}

	deleted, err := c.svc.DeleteRSVP(ctx, id)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "✅ Deleted RSVP from %s (%s)\n", deleted.Name, deleted.Phone)
}

func (c *console) printError(err error) {
	if typed := apperr.As(err); typed != nil && typed.Code() != apperr.CodeInternal {
		fmt.Fprintf(c.out, "❌ %s\n", typed.Message())
		return
	}
	fmt.Fprintf(c.out, "❌ Error: %v\n", err)
}
