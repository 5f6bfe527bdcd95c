package appstate

import "time"

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

type SyncPreferences struct {
	Garmin     bool `json:"garmin"`
	AppleWatch bool `json:"apple_watch"`
	Strava     bool `json:"strava"`
}

type UserProfile struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Age                int             `json:"age"`
	HeightCm           float64         `json:"height"`
	WeightKg           float64         `json:"weight"`
	FitnessLevel       FitnessLevel    `json:"fitness_level"`
	WeeklyAvailability float64         `json:"weekly_availability"` // hours per week
	Role               Role            `json:"role"`
	SyncPreferences    SyncPreferences `json:"sync_preferences"`
}

type PrimaryGoal string

const (
	GoalMarathon         PrimaryGoal = "marathon"
	GoalWeightLoss       PrimaryGoal = "weightLoss"
	GoalSpeedImprovement PrimaryGoal = "speedImprovement"
	GoalGeneral          PrimaryGoal = "general"
)

type TargetMetrics struct {
	Pace   string   `json:"pace,omitempty"` // e.g. "5:30/km"
	Weight *float64 `json:"weight,omitempty"`
	VO2Max *float64 `json:"vo2_max,omitempty"`
}

type WeeklyGoals struct {
	Distance float64 `json:"distance"`
	Workouts int     `json:"workouts"`
}

type LongTermGoals struct {
	TargetDate  string `json:"target_date,omitempty"`
	TargetEvent string `json:"target_event,omitempty"`
}

type FitnessGoals struct {
	PrimaryGoal   PrimaryGoal   `json:"primary_goal"`
	TargetMetrics TargetMetrics `json:"target_metrics"`
	WeeklyGoals   WeeklyGoals   `json:"weekly_goals"`
	LongTermGoals LongTermGoals `json:"long_term_goals"`
}

// ExercisePlan is one movement as planned inside a template.
type ExercisePlan struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Sets              int      `json:"sets"`
	Reps              int      `json:"reps"`
	Weight            *float64 `json:"weight,omitempty"`
	RestTimeSec       int      `json:"rest_time,omitempty"`
	Rounds            int      `json:"rounds,omitempty"`
	EstimatedCalories int      `json:"estimated_calories,omitempty"`
}

// ExerciseResult records how a planned exercise was actually performed.
// ExerciseID refers to the ExercisePlan it was created from.
type ExerciseResult struct {
	ExerciseID        string   `json:"exercise_id"`
	Name              string   `json:"name"`
	TargetSets        int      `json:"target_sets"`
	TargetReps        int      `json:"target_reps"`
	RestTimeSec       int      `json:"rest_time,omitempty"`
	EstimatedCalories int      `json:"estimated_calories,omitempty"`
	Completed         bool     `json:"completed"`
	ActualSets        int      `json:"actual_sets"`
	ActualReps        int      `json:"actual_reps"`
	ActualWeight      *float64 `json:"actual_weight,omitempty"`
}

type Category string

const (
	CategoryStrength    Category = "strength"
	CategoryCardio      Category = "cardio"
	CategoryFlexibility Category = "flexibility"
	CategoryMixed       Category = "mixed"
)

type WorkoutTemplate struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Exercises         []ExercisePlan `json:"exercises"`
	EstimatedDuration int            `json:"estimated_duration"` // minutes
	EstimatedCalories int            `json:"estimated_calories"`
	Category          Category       `json:"category"`
	CreatedAt         time.Time      `json:"created_at"`
}

type ScheduleStatus string

const (
	StatusScheduled  ScheduleStatus = "scheduled"
	StatusInProgress ScheduleStatus = "in-progress"
	StatusCompleted  ScheduleStatus = "completed"
	StatusSkipped    ScheduleStatus = "skipped"
)

// Open reports whether the status still accepts transitions.
func (s ScheduleStatus) Open() bool {
	return s == StatusScheduled || s == StatusInProgress
}

type ScheduledWorkout struct {
	ID            string          `json:"id"`
	TemplateID    string          `json:"template_id"`
	Template      WorkoutTemplate `json:"template"`
	ScheduledDate string          `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string          `json:"scheduled_time"` // HH:MM
	Status        ScheduleStatus  `json:"status"`
}

type WorkoutSession struct {
	ID                 string           `json:"id"`
	TemplateID         string           `json:"template_id"`
	TemplateName       string           `json:"template_name"`
	ScheduledWorkoutID string           `json:"scheduled_workout_id,omitempty"`
	StartTime          time.Time        `json:"start_time"`
	EndTime            *time.Time       `json:"end_time,omitempty"`
	DurationMin        int              `json:"duration"`
	Exercises          []ExerciseResult `json:"exercises"`
	TotalCalories      int              `json:"total_calories"`
	Notes              string           `json:"notes,omitempty"`
	CompletedAt        time.Time        `json:"completed_at"`
}

type ActivityType string

const (
	ActivityRun      ActivityType = "run"
	ActivityStrength ActivityType = "strength"
	ActivityRecovery ActivityType = "recovery"
)

type WorkoutData struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Type        ActivityType `json:"type"`
	DurationMin int          `json:"duration"`
	Distance    *float64     `json:"distance,omitempty"`
	Pace        string       `json:"pace,omitempty"`
	HeartRate   *int         `json:"heart_rate,omitempty"`
	Calories    *int         `json:"calories,omitempty"`
}

// State is the full set of cross-screen data. Values handed out by the
// store are deep copies and may be modified freely by the caller.
type State struct {
	UserProfile       *UserProfile       `json:"user_profile"`
	FitnessGoals      *FitnessGoals      `json:"fitness_goals"`
	Workouts          []WorkoutData      `json:"workouts"`
	WorkoutTemplates  []WorkoutTemplate  `json:"workout_templates"`
	ScheduledWorkouts []ScheduledWorkout `json:"scheduled_workouts"`
	WorkoutSessions   []WorkoutSession   `json:"workout_sessions"`
	CurrentSession    *WorkoutSession    `json:"current_workout_session"`
	IsLoading         bool               `json:"is_loading"`
}
