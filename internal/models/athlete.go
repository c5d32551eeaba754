package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Identity describes who the athlete is. All fields are optional.
type Identity struct {
	Name string `json:"name,omitempty"`
	Age  int    `json:"age,omitempty"`
	Sex  string `json:"sex,omitempty"`
}

// TrainingPattern describes the weekly training rhythm.
type TrainingPattern struct {
	RunningSessionsPerWeek int    `json:"running_sessions_per_week"`
	LongRunDay             string `json:"long_run_day"`
	SwimDay                string `json:"swim_day,omitempty"`
	BikeDay                string `json:"bike_day,omitempty"`
	RestDay                string `json:"rest_day,omitempty"`
}

// Validate validates the training pattern.
func (p TrainingPattern) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RunningSessionsPerWeek, validation.Min(0)),
		validation.Field(&p.LongRunDay, validation.Required),
	)
}

// Injury is one entry in the athlete's injury history.
type Injury struct {
	Area        string `json:"area"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Severity    int    `json:"severity,omitempty"`
}

// Validate validates the injury entry.
func (i Injury) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Area, validation.Required),
		validation.Field(&i.Severity, validation.Min(0), validation.Max(10)),
	)
}

// Preferences holds cross-training and free-form preference notes.
type Preferences struct {
	CrossTraining bool   `json:"cross_training"`
	Notes         string `json:"notes,omitempty"`
}

// AthleteProfile is the payload stored under the "profile" document kind.
type AthleteProfile struct {
	Identity        *Identity        `json:"identity,omitempty"`
	TrainingPattern *TrainingPattern `json:"training_pattern,omitempty"`
	InjuryHistory   []Injury         `json:"injury_history,omitempty"`
	Preferences     *Preferences     `json:"preferences,omitempty"`
	Constraints     []string         `json:"constraints,omitempty"`
}

// Validate validates the profile payload.
func (p AthleteProfile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TrainingPattern),
		validation.Field(&p.InjuryHistory),
	)
}

// Event is one target event in the athlete's season.
type Event struct {
	Name       string `json:"name"`
	Date       string `json:"date"`
	Discipline string `json:"discipline"`
	Priority   string `json:"priority"`
	TargetTime string `json:"target_time,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Validate validates the event.
func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Date, validation.Required),
		validation.Field(&e.Discipline, validation.Required,
			validation.In("run", "triathlon", "swim", "bike")),
		validation.Field(&e.Priority, validation.Required,
			validation.In("A", "B", "C")),
	)
}

// AthleteGoals is the payload stored under the "goals" document kind.
type AthleteGoals struct {
	Events      []Event `json:"events"`
	SeasonNotes string  `json:"season_notes,omitempty"`
}

// Validate validates the goals payload.
func (g AthleteGoals) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Events, validation.NotNil),
	)
}

// PolicyRule is one rule in the athlete's policy set.
type PolicyRule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Condition   string `json:"condition,omitempty"`
	Action      string `json:"action,omitempty"`
	Severity    string `json:"severity"`
}

// Validate validates the policy rule.
func (r PolicyRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Severity, validation.Required,
			validation.In("info", "warn", "block")),
	)
}

// AthletePolicies is the payload stored under the "policies" document kind.
type AthletePolicies struct {
	Rules []PolicyRule `json:"rules"`
}

// Validate validates the policies payload.
func (p AthletePolicies) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Rules, validation.NotNil),
	)
}

// NoteInput carries the arguments of the add-note operation.
type NoteInput struct {
	ActivityID string   `json:"activity_id"`
	NoteText   string   `json:"note_text"`
	NoteDate   string   `json:"note_date,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Validate validates the note input.
func (n NoteInput) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ActivityID, validation.Required),
		validation.Field(&n.NoteText, validation.Required),
	)
}
