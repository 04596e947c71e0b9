package output

import (
	"bytes"
	"testing"

	"todo/internal/service"
	"todo/internal/testutil"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{"open", service.Task{ID: 7, Title: "Buy milk"}, "   7  [ ] Buy milk\n"},
		{"completed", service.Task{ID: 12, Title: "Done", Completed: true}, "  12  [x] Done\n"},
		{"newlines", service.Task{ID: 1, Title: "a\nb\r\nc"}, "   1  [ ] a b  c\n"},
		{"blank", service.Task{ID: 3, Title: "  "}, "   3  [ ] (untitled)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.task)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatTasks_Golden(t *testing.T) {
	var buf bytes.Buffer
	FormatTasks(&buf, []service.Task{
		{ID: 1042, Title: "Renew passport"},
		{ID: 3, Title: "Buy milk"},
		{ID: 2, Title: "Call plumber", Completed: true},
	})
	testutil.Golden(t, "tasks", buf.Bytes())
}

func TestFormatSession_Anonymous(t *testing.T) {
	var buf bytes.Buffer
	FormatSession(&buf, nil)
	if buf.String() != "anonymous\n" {
		t.Errorf("got %q", buf.String())
	}
}
