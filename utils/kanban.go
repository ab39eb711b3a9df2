package utils

import (
	"fmt"
	"sort"

	"taskboard/models"
)

// TaskUpdate is one row of the batch emitted after a drag: the task to
// touch, the column it ends up in and its recomputed sparse position.
type TaskUpdate struct {
	TaskID   string            `json:"task_id"`
	Status   models.TaskStatus `json:"status"`
	Position int               `json:"position"`
}

// DragLocation identifies a slot on the board
type DragLocation struct {
	Status models.TaskStatus `json:"status"`
	Index  int               `json:"index"`
}

// Board holds the five status columns, each ordered by position
type Board map[models.TaskStatus][]models.Task

// BuildBoard partitions tasks into status columns sorted by position.
// Position collisions keep the input order (stable sort).
func BuildBoard(tasks []models.Task) Board {
	board := make(Board, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	for _, task := range tasks {
		board[task.Status] = append(board[task.Status], task)
	}
	for _, status := range models.TaskStatuses {
		column := board[status]
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].Position < column[j].Position
		})
	}
	return board
}

// ColumnPosition is the sparse position for a slot: min((index+1)*1000,
// 1_000_000). The wide step leaves gaps so single inserts don't force a
// full renumber.
func ColumnPosition(index int) int {
	position := (index + 1) * models.PositionStep
	if position > models.PositionMax {
		return models.PositionMax
	}
	return position
}

// Reorder applies a drag to the board in place and returns the batch of
// updates to persist. The moved task is restatused only on cross-column
// moves; positions are recomputed for the destination column and, when the
// move crossed columns, the source column. Unchanged rows are not emitted,
// except the moved task which always is.
func Reorder(board Board, source, destination DragLocation) ([]TaskUpdate, error) {
	sourceColumn := board[source.Status]
	if source.Index < 0 || source.Index >= len(sourceColumn) {
		return nil, fmt.Errorf("no task at index %d in column %s", source.Index, source.Status)
	}

	movedTask := sourceColumn[source.Index]
	sourceColumn = append(sourceColumn[:source.Index], sourceColumn[source.Index+1:]...)
	board[source.Status] = sourceColumn

	if source.Status != destination.Status {
		movedTask.Status = destination.Status
	}

	destinationColumn := board[destination.Status]
	index := destination.Index
	if index < 0 {
		index = 0
	}
	if index > len(destinationColumn) {
		index = len(destinationColumn)
	}
	destinationColumn = append(destinationColumn, models.Task{})
	copy(destinationColumn[index+1:], destinationColumn[index:])
	destinationColumn[index] = movedTask
	board[destination.Status] = destinationColumn

	updates := []TaskUpdate{{
		TaskID:   movedTask.ID,
		Status:   destination.Status,
		Position: ColumnPosition(index),
	}}

	for i, task := range destinationColumn {
		if task.ID == movedTask.ID {
			continue
		}
		if newPosition := ColumnPosition(i); task.Position != newPosition {
			updates = append(updates, TaskUpdate{
				TaskID:   task.ID,
				Status:   destination.Status,
				Position: newPosition,
			})
		}
	}

	if source.Status != destination.Status {
		for i, task := range sourceColumn {
			if newPosition := ColumnPosition(i); task.Position != newPosition {
				updates = append(updates, TaskUpdate{
					TaskID:   task.ID,
					Status:   source.Status,
					Position: newPosition,
				})
			}
		}
	}

	return updates, nil
}
