package validation

import (
	"task-tracker/internal/domain"
)

// TaskValidator checks tasks, epics and subtasks before the store mutates
// anything.
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator with default limits
func NewTaskValidator() *TaskValidator {
	return NewTaskValidatorWithLimits(DefaultLimits())
}

// NewTaskValidatorWithLimits creates a task validator enforcing limits
func NewTaskValidatorWithLimits(limits Limits) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithLimits(limits)}
}

// ValidateName validates an item name
func (tv *TaskValidator) ValidateName(name string) error {
	validationError := NewValidationError()
	tv.checkName(validationError, name)
	return validationError.OrNil()
}

// ValidateTask validates the caller-supplied fields of a task
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	validationError := NewValidationError()
	tv.checkCommon(validationError, task)
	return validationError.OrNil()
}

// ValidateSubtask validates a subtask, including its epic reference
func (tv *TaskValidator) ValidateSubtask(subtask domain.Subtask) error {
	validationError := NewValidationError()
	tv.checkCommon(validationError, subtask.Task)
	if !tv.validator.IsValidID(int64(subtask.EpicID)) {
		validationError.AddInvalidValueError("epic_id", subtask.EpicID, "must be a positive integer")
	}
	return validationError.OrNil()
}

// ValidateEpic validates an epic. Only name and description are caller
// supplied; everything else is derived.
func (tv *TaskValidator) ValidateEpic(epic domain.Epic) error {
	validationError := NewValidationError()
	tv.checkName(validationError, epic.Name)
	tv.checkDescription(validationError, epic.Description)
	return validationError.OrNil()
}

// ValidateID validates an item id
func (tv *TaskValidator) ValidateID(id domain.ID) error {
	if !tv.validator.IsValidID(int64(id)) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("id", id, "must be a positive integer")
		return validationError
	}
	return nil
}

func (tv *TaskValidator) checkCommon(ve *ValidationError, task domain.Task) {
	tv.checkName(ve, task.Name)
	tv.checkDescription(ve, task.Description)

	if !task.Status.Valid() {
		ve.AddInvalidValueError("status", task.Status, "must be one of NEW, IN_PROGRESS, DONE")
	}
	if task.Duration < 0 {
		ve.AddInvalidRangeError("duration", task.Duration, "must not be negative")
	} else if !tv.validator.IsValidDuration(task.Duration) {
		ve.AddInvalidRangeError("duration", task.Duration, "exceeds the configured maximum")
	}
	if task.StartTime != nil && !tv.validator.IsValidStartTime(*task.StartTime) {
		ve.AddInvalidValueError("start_time", *task.StartTime, "must be a real point in time")
	}
}

func (tv *TaskValidator) checkName(ve *ValidationError, name string) {
	trimmed := tv.validator.TrimString(name)
	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("name")
		return
	}
	limits := tv.validator.Limits()
	if !tv.validator.IsValidNameLength(trimmed) {
		ve.AddInvalidLengthError("name", trimmed, limits.NameMinLength, limits.NameMaxLength)
	}
	if !tv.validator.HasNoControlCharacters(name) {
		ve.AddInvalidCharacterError("name", name)
	}
}

func (tv *TaskValidator) checkDescription(ve *ValidationError, description string) {
	maxLen := tv.validator.Limits().DescriptionMaxLength
	if !tv.validator.IsValidStringLength(description, 0, maxLen) {
		ve.AddInvalidLengthError("description", len(description), 0, maxLen)
	}
}
