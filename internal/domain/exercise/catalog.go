package exercise

import (
	"time"

	"github.com/okian/formcoach/internal/domain/model"
)

// Catalog ids.
const (
	Squats        = "squats"
	Pushups       = "pushups"
	Plank         = "plank"
	Lunges        = "lunges"
	BicepCurls    = "bicepCurls"
	ShoulderPress = "shoulderPress"
	Situps        = "situps"
	Deadlifts     = "deadlifts"
)

// Generic is the profile used for ids missing from the catalog.
const Generic = "generic"

const (
	genericDelta      = 30
	genericRefractory = 1500 * time.Millisecond
)

func below(enter, exit float64, countOn Trigger, active model.Phase) PhaseConfig {
	return PhaseConfig{Mode: ModeHysteresis, Direction: Below, Enter: enter, Exit: exit, CountOn: countOn, Active: active}
}

func above(enter, exit float64, countOn Trigger, active model.Phase) PhaseConfig {
	return PhaseConfig{Mode: ModeHysteresis, Direction: Above, Enter: enter, Exit: exit, CountOn: countOn, Active: active}
}

// builtin returns fresh copies of the built-in profiles in display order.
func builtin() []Profile {
	return []Profile{
		{
			ID: Squats, Name: "Squats", Description: "Lower body strength",
			Type: TypeReps, Category: "legs", Difficulty: "beginner",
			TargetMuscles: []string{"quadriceps", "glutes", "hamstrings"},
			Instructions: []string{
				"Stand with feet hip-width apart",
				"Bend knees and hips to lower your body",
				"Keep your chest up and knees over toes",
				"Drive through your heels to stand back up",
			},
			Criteria:  map[string]float64{"minDepth": 90, "maxKneeDifference": 15, "maxHipDifference": 15, "minStability": 70},
			Bands:     Bands{Excellent: 90, Good: 75, Fair: 60},
			Phase:     below(135, 155, OnExit, model.PhaseDown),
			RepPraise: "Excellent squat!", RepCoach: "work on form",
			Tip: "Remember to keep your knees aligned with your toes and go down to at least 90 degrees.",
		},
		{
			ID: Pushups, Name: "Push-ups", Description: "Upper body strength",
			Type: TypeReps, Category: "chest", Difficulty: "beginner",
			TargetMuscles: []string{"chest", "shoulders", "triceps"},
			Instructions: []string{
				"Start from a high plank",
				"Bend your elbows to lower your chest",
				"Keep your body in one straight line",
				"Press back up to the start",
			},
			Criteria:  map[string]float64{"minDepth": 90, "maxElbowDifference": 20, "maxBodySag": 0.05, "minStability": 70},
			Bands:     Bands{Excellent: 90, Good: 75, Fair: 60},
			Phase:     below(140, 155, OnExit, model.PhaseDown),
			RepPraise: "Great push-up!", RepCoach: "improve form",
			Tip: "Keep your body in a straight line and lower yourself until your chest nearly touches the ground.",
		},
		{
			ID: Plank, Name: "Plank", Description: "Core stability",
			Type: TypeTime, Category: "core", Difficulty: "beginner",
			TargetMuscles: []string{"core", "shoulders", "glutes"},
			Instructions: []string{
				"Support yourself on forearms or hands and toes",
				"Keep a straight line from head to heels",
				"Brace your core",
				"Hold without letting the hips drop",
			},
			Criteria:    map[string]float64{"minStability": 80, "maxBodyDeviation": 0.1, "minAlignment": 70},
			Bands:       Bands{Excellent: 90, Good: 75, Fair: 60},
			TimeTargets: map[string]int{"beginner": 30, "intermediate": 60, "advanced": 120},
			Phase:       PhaseConfig{Mode: ModeHold, Active: model.PhaseHolding},
			Tip:         "Engage your core and maintain a straight line from head to heels.",
		},
		{
			ID: Lunges, Name: "Lunges", Description: "Single-leg strength",
			Type: TypeReps, Category: "legs", Difficulty: "intermediate",
			TargetMuscles: []string{"quadriceps", "glutes", "hamstrings", "calves"},
			Instructions: []string{
				"Step one leg forward",
				"Lower until both knees reach about 90 degrees",
				"Keep the front knee above the ankle",
				"Push off the front foot to return",
			},
			Criteria: map[string]float64{
				"minFrontKneeAngle": 80, "maxFrontKneeAngle": 100, "minBackKneeAngle": 80,
				"maxKneeOverToe": 0.05, "minStability": 60,
			},
			Bands:     Bands{Excellent: 85, Good: 70, Fair: 55},
			Phase:     above(70, 40, OnEnter, model.PhaseLunge),
			RepPraise: "Great lunge!", RepCoach: "work on balance",
			Tip: "Step far enough forward and keep your front knee over your ankle.",
		},
		{
			ID: BicepCurls, Name: "Bicep Curls", Description: "Arm isolation",
			Type: TypeReps, Category: "arms", Difficulty: "beginner",
			TargetMuscles: []string{"biceps", "forearms"},
			Instructions: []string{
				"Stand tall with arms at your sides",
				"Keep elbows pinned to your torso",
				"Curl the weight towards your shoulders",
				"Lower under control",
			},
			Criteria: map[string]float64{
				"minElbowFlexion": 45, "maxElbowFlexion": 140, "maxShoulderMovement": 0.1, "minControlledMovement": 70,
			},
			Bands:     Bands{Excellent: 90, Good: 75, Fair: 60},
			Phase:     below(100, 140, OnExit, model.PhaseUp),
			Tracks:    LimbsArms,
			RepPraise: "Great curl!", RepCoach: "keep shoulders still",
			Tip: "Control the movement and avoid swinging your arms.",
		},
		{
			ID: ShoulderPress, Name: "Shoulder Press", Description: "Overhead strength",
			Type: TypeReps, Category: "shoulders", Difficulty: "intermediate",
			TargetMuscles: []string{"shoulders", "triceps", "upper chest"},
			Instructions: []string{
				"Start with hands at shoulder height",
				"Press straight overhead",
				"Keep your core tight and back neutral",
				"Lower back to shoulder height",
			},
			Criteria: map[string]float64{
				"minShoulderFlexion": 160, "maxWristDeviation": 0.08, "minCoreStability": 70, "maxBackArch": 0.1,
			},
			Bands:     Bands{Excellent: 88, Good: 73, Fair: 58},
			Phase:     above(140, 100, OnEnter, model.PhaseUp),
			Tracks:    LimbsArms,
			RepPraise: "Strong press!", RepCoach: "stack wrists over elbows",
			Tip: "Press straight up and avoid arching your back.",
		},
		{
			ID: Situps, Name: "Sit-ups", Description: "Core strengthening",
			Type: TypeReps, Category: "core", Difficulty: "beginner",
			TargetMuscles: []string{"rectus abdominis", "hip flexors"},
			Instructions: []string{
				"Lie on your back with knees bent",
				"Cross arms or keep hands beside your head",
				"Curl your torso up towards the knees",
				"Lower back down slowly",
			},
			Criteria: map[string]float64{
				"minTorsoFlexion": 30, "maxNeckStrain": 0.05, "minControlledMovement": 70, "maxHipFlexorDominance": 0.3,
			},
			Bands:     Bands{Excellent: 85, Good: 70, Fair: 55},
			Phase:     below(60, 90, OnEnter, model.PhaseUp),
			RepPraise: "Great sit-up!", RepCoach: "lead with your core",
			Tip: "Focus on lifting with your core, not pulling on your neck.",
		},
		{
			ID: Deadlifts, Name: "Deadlifts", Description: "Full body strength",
			Type: TypeReps, Category: "back", Difficulty: "advanced",
			TargetMuscles: []string{"hamstrings", "glutes", "erector spinae", "traps"},
			Instructions: []string{
				"Stand with feet under the bar",
				"Hinge at the hips and grip the bar",
				"Keep a flat back as you stand up",
				"Lower by pushing the hips back",
			},
			Criteria: map[string]float64{
				"minHipHinge": 45, "maxBackRounding": 0.1, "minKneeTracking": 80, "maxBarDrift": 0.05,
			},
			Bands:     Bands{Excellent: 95, Good: 80, Fair: 65},
			Phase:     below(110, 150, OnExit, model.PhaseDown),
			RepPraise: "Solid deadlift!", RepCoach: "hinge at the hips",
			Tip: "Keep your back straight and lift with your legs and hips.",
		},
	}
}

// genericProfile describes an exercise the catalog does not know.
func genericProfile(id string) Profile {
	if id == "" {
		id = Generic
	}
	return Profile{
		ID: id, Name: "Exercise", Description: "Unrecognized exercise",
		Type: TypeReps, Category: "other", Difficulty: "beginner",
		Bands: Bands{Excellent: 90, Good: 75, Fair: 60},
		Phase: PhaseConfig{
			Mode: ModePulse, Active: model.PhaseActive,
			Delta: genericDelta, Refractory: genericRefractory,
		},
		RepPraise: "Nice rep!", RepCoach: "work on form",
	}
}
