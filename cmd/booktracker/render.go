package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"booktracker/internal/book"
)

const dateLayout = "2006-01-02"

func renderTable(w io.Writer, books []book.Book) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tYEAR\tRATING\tLIST\tADDED")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, orDash(b.Genre), year(b.YearPublished),
			stars(b.Rating), b.ListType, b.DateAdded.Format(dateLayout))
	}
	_ = tw.Flush()
}

func renderDetail(w io.Writer, b book.Book) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", b.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", b.Title)
	fmt.Fprintf(tw, "Author:\t%s\n", b.Author)
	fmt.Fprintf(tw, "Genre:\t%s\n", orDash(b.Genre))
	fmt.Fprintf(tw, "Year:\t%s\n", year(b.YearPublished))
	fmt.Fprintf(tw, "Rating:\t%s\n", stars(b.Rating))
	fmt.Fprintf(tw, "List:\t%s\n", listLabel(b.ListType))
	fmt.Fprintf(tw, "Added:\t%s\n", b.DateAdded.Format(dateLayout))
	if b.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", b.Notes)
	}
	_ = tw.Flush()
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}

func year(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func listLabel(lt book.ListType) string {
	switch lt {
	case book.ListOwned:
		return "owned"
	case book.ListWant:
		return "wishlist"
	default:
		return string(lt)
	}
}
