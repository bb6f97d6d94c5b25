package pdfinfo

import (
	"bytes"
	"fmt"
	"testing"
)

// buildPDF assembles a minimal page-tree-only PDF with the given page count.
func buildPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := ""
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 3+i)
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages))
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n", 3+i))
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefPos)
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	for _, want := range []int{1, 3} {
		got, err := PageCount(buildPDF(want))
		if err != nil {
			t.Fatalf("PageCount(%d pages): %v", want, err)
		}
		if got != want {
			t.Errorf("PageCount = %d, want %d", got, want)
		}
	}
}

func TestPageCountRejectsGarbage(t *testing.T) {
	if _, err := PageCount([]byte("not a pdf")); err == nil {
		t.Fatal("expected error")
	}
}
