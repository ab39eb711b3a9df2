package utils

import (
	"testing"

	"taskboard/models"
)

func makeColumn(status models.TaskStatus, ids ...string) []models.Task {
	tasks := make([]models.Task, 0, len(ids))
	for i, id := range ids {
		tasks = append(tasks, models.Task{
			ID:       id,
			Status:   status,
			Position: (i + 1) * models.PositionStep,
		})
	}
	return tasks
}

func TestColumnPosition(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  int
	}{
		{name: "first slot", index: 0, want: 1000},
		{name: "second slot", index: 1, want: 2000},
		{name: "tenth slot", index: 9, want: 10000},
		{name: "at the cap", index: 999, want: 1_000_000},
		{name: "beyond the cap", index: 5000, want: 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColumnPosition(tt.index); got != tt.want {
				t.Errorf("ColumnPosition(%d) = %d, want %d", tt.index, got, tt.want)
			}
		})
	}
}

func TestBuildBoard(t *testing.T) {
	tasks := []models.Task{
		{ID: "c", Status: models.StatusTodo, Position: 3000},
		{ID: "a", Status: models.StatusTodo, Position: 1000},
		{ID: "b", Status: models.StatusTodo, Position: 2000},
		{ID: "d", Status: models.StatusDone, Position: 1000},
	}

	board := BuildBoard(tasks)

	for _, status := range models.TaskStatuses {
		if board[status] == nil {
			t.Errorf("column %s missing from board", status)
		}
	}

	gotOrder := []string{}
	for _, task := range board[models.StatusTodo] {
		gotOrder = append(gotOrder, task.ID)
	}
	wantOrder := []string{"a", "b", "c"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("TODO column order = %v, want %v", gotOrder, wantOrder)
		}
	}

	if len(board[models.StatusDone]) != 1 || board[models.StatusDone][0].ID != "d" {
		t.Errorf("DONE column = %v, want [d]", board[models.StatusDone])
	}
}

func TestBuildBoard_PositionCollision(t *testing.T) {
	// Ties keep input order
	tasks := []models.Task{
		{ID: "first", Status: models.StatusTodo, Position: 1000},
		{ID: "second", Status: models.StatusTodo, Position: 1000},
	}

	board := BuildBoard(tasks)
	column := board[models.StatusTodo]
	if column[0].ID != "first" || column[1].ID != "second" {
		t.Errorf("collision order = [%s %s], want [first second]", column[0].ID, column[1].ID)
	}
}

func TestReorder_SameColumn(t *testing.T) {
	board := Board{}
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	board[models.StatusTodo] = makeColumn(models.StatusTodo, "t1", "t2", "t3", "t4")

	// Drag the last task to the top
	updates, err := Reorder(board,
		DragLocation{Status: models.StatusTodo, Index: 3},
		DragLocation{Status: models.StatusTodo, Index: 0},
	)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	for _, update := range updates {
		if update.Status != models.StatusTodo {
			t.Errorf("same-column move changed status of %s to %s", update.TaskID, update.Status)
		}
	}

	// Every task shifted, so all four are emitted
	if len(updates) != 4 {
		t.Fatalf("got %d updates, want 4", len(updates))
	}
	if updates[0].TaskID != "t4" || updates[0].Position != 1000 {
		t.Errorf("moved task update = %+v, want t4 at 1000", updates[0])
	}

	// Positions in the column are strictly increasing and slot-exact
	for i, task := range board[models.StatusTodo] {
		want := ColumnPosition(i)
		got := positionFor(t, updates, task.ID, task.Position)
		if got != want {
			t.Errorf("column slot %d (%s) position = %d, want %d", i, task.ID, got, want)
		}
	}
}

func TestReorder_SameColumn_NoOp(t *testing.T) {
	board := Board{}
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	board[models.StatusTodo] = makeColumn(models.StatusTodo, "t1", "t2")

	// Dropping a task back on its own slot emits only the moved task
	updates, err := Reorder(board,
		DragLocation{Status: models.StatusTodo, Index: 1},
		DragLocation{Status: models.StatusTodo, Index: 1},
	)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	if updates[0].TaskID != "t2" || updates[0].Position != 2000 || updates[0].Status != models.StatusTodo {
		t.Errorf("update = %+v, want t2 TODO 2000", updates[0])
	}
}

// Dragging the 3rd task (index 2) of a 4-task TODO column to index 0 of
// a 2-task IN_PROGRESS column.
func TestReorder_CrossColumn(t *testing.T) {
	board := Board{}
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	board[models.StatusTodo] = makeColumn(models.StatusTodo, "t1", "t2", "t3", "t4")
	board[models.StatusInProgress] = makeColumn(models.StatusInProgress, "p1", "p2")

	updates, err := Reorder(board,
		DragLocation{Status: models.StatusTodo, Index: 2},
		DragLocation{Status: models.StatusInProgress, Index: 0},
	)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	want := map[string]TaskUpdate{
		"t3": {TaskID: "t3", Status: models.StatusInProgress, Position: 1000},
		"p1": {TaskID: "p1", Status: models.StatusInProgress, Position: 2000},
		"p2": {TaskID: "p2", Status: models.StatusInProgress, Position: 3000},
		// t1 (1000), t2 (2000) keep their positions; t4 closes the gap
		"t4": {TaskID: "t4", Status: models.StatusTodo, Position: 3000},
	}

	if len(updates) != len(want) {
		t.Fatalf("got %d updates %v, want %d", len(updates), updates, len(want))
	}
	for _, update := range updates {
		expected, ok := want[update.TaskID]
		if !ok {
			t.Errorf("unexpected update for %s", update.TaskID)
			continue
		}
		if update != expected {
			t.Errorf("update for %s = %+v, want %+v", update.TaskID, update, expected)
		}
	}

	// Exactly the moved task changed status
	if updates[0].TaskID != "t3" || updates[0].Status != models.StatusInProgress {
		t.Errorf("first update = %+v, want the moved task restatused", updates[0])
	}

	// Board mutated consistently with the updates
	if len(board[models.StatusTodo]) != 3 || len(board[models.StatusInProgress]) != 3 {
		t.Errorf("column sizes = %d/%d, want 3/3",
			len(board[models.StatusTodo]), len(board[models.StatusInProgress]))
	}
	if board[models.StatusInProgress][0].ID != "t3" {
		t.Errorf("destination head = %s, want t3", board[models.StatusInProgress][0].ID)
	}
}

func TestReorder_InvalidSource(t *testing.T) {
	board := Board{}
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	board[models.StatusTodo] = makeColumn(models.StatusTodo, "t1")

	tests := []struct {
		name  string
		index int
	}{
		{name: "negative index", index: -1},
		{name: "past the end", index: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reorder(board,
				DragLocation{Status: models.StatusTodo, Index: tt.index},
				DragLocation{Status: models.StatusDone, Index: 0},
			)
			if err == nil {
				t.Error("Reorder() expected error, got nil")
			}
		})
	}
}

func TestReorder_DestinationIndexClamped(t *testing.T) {
	board := Board{}
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	board[models.StatusTodo] = makeColumn(models.StatusTodo, "t1")
	board[models.StatusDone] = makeColumn(models.StatusDone, "d1")

	// An index past the end of the destination appends
	updates, err := Reorder(board,
		DragLocation{Status: models.StatusTodo, Index: 0},
		DragLocation{Status: models.StatusDone, Index: 10},
	)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if updates[0].Position != 2000 {
		t.Errorf("moved task position = %d, want 2000", updates[0].Position)
	}
	if board[models.StatusDone][1].ID != "t1" {
		t.Errorf("destination tail = %s, want t1", board[models.StatusDone][1].ID)
	}
}

// positionFor resolves a task's final position: its update if emitted,
// otherwise its unchanged stored position
func positionFor(t *testing.T, updates []TaskUpdate, taskID string, stored int) int {
	t.Helper()
	for _, update := range updates {
		if update.TaskID == taskID {
			return update.Position
		}
	}
	return stored
}
