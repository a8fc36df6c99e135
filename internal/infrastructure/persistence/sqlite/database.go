// Package sqlite provides database setup and the reference-data seed. Despite
// the name it also opens Postgres when configured; SQLite is the zero-config
// default for development and tests.
package sqlite

import (
	"fmt"

	gormModels "github.com/planforge/v1/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase opens the database and runs auto-migration.
func SetupDatabase(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&gormModels.UserModel{},
		&gormModels.FoodItemModel{},
		&gormModels.ExerciseItemModel{},
		&gormModels.SubstitutionRuleModel{},
		&gormModels.SavedPlanModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase populates the catalog and rule table with the curated reference
// data. It is idempotent: a non-empty catalog is left alone.
func SeedDatabase(db *gorm.DB) error {
	var foodCount int64
	db.Model(&gormModels.FoodItemModel{}).Count(&foodCount)
	if foodCount > 0 {
		return nil
	}

	foods := []gormModels.FoodItemModel{
		{Name: "Chicken Breast", Allergens: []string{}, Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6, IsActive: true},
		{Name: "Salmon", Allergens: []string{"fish"}, Calories: 208, Protein: 20, Carbs: 0, Fat: 13, IsActive: true},
		{Name: "Tofu", Allergens: []string{"soy"}, Calories: 76, Protein: 8, Carbs: 1.9, Fat: 4.8, IsActive: true},
		{Name: "Brown Rice", Allergens: []string{}, Calories: 216, Protein: 5, Carbs: 45, Fat: 1.8, IsActive: true},
		{Name: "Quinoa", Allergens: []string{}, Calories: 222, Protein: 8, Carbs: 39, Fat: 3.6, IsActive: true},
		{Name: "Broccoli", Allergens: []string{}, Calories: 55, Protein: 3.7, Carbs: 11, Fat: 0.6, IsActive: true},
		{Name: "Greek Yogurt", Allergens: []string{"dairy"}, Calories: 100, Protein: 17, Carbs: 6, Fat: 0.7, IsActive: true},
		{Name: "Scrambled Eggs", Allergens: []string{"eggs"}, Calories: 182, Protein: 12, Carbs: 2, Fat: 14, IsActive: true},
		{Name: "Peanut Butter Toast", Allergens: []string{"peanuts", "gluten"}, Calories: 341, Protein: 12, Carbs: 33, Fat: 18, IsActive: true},
		{Name: "Almond Butter Toast", Allergens: []string{"tree nuts", "gluten"}, Calories: 330, Protein: 10, Carbs: 32, Fat: 17, IsActive: true},
		{Name: "Sunflower Butter Toast", Allergens: []string{"gluten"}, Calories: 320, Protein: 9, Carbs: 31, Fat: 16, IsActive: true},
		{Name: "Shrimp Stir Fry", Allergens: []string{"shellfish", "soy"}, Calories: 290, Protein: 24, Carbs: 21, Fat: 12, IsActive: true},
		{Name: "Grilled Chicken Salad", Allergens: []string{}, Calories: 350, Protein: 35, Carbs: 20, Fat: 12, IsActive: true},
		{Name: "Oatmeal", Allergens: []string{}, Calories: 158, Protein: 6, Carbs: 27, Fat: 3.2, IsActive: true},
		{Name: "Cottage Cheese", Allergens: []string{"dairy"}, Calories: 98, Protein: 11, Carbs: 3.4, Fat: 4.3, IsActive: true},
	}
	if err := db.Create(&foods).Error; err != nil {
		return fmt.Errorf("failed to seed foods: %w", err)
	}

	exercises := []gormModels.ExerciseItemModel{
		{Name: "Squats", Contraindications: []string{"knee"}, Duration: "3 sets of 15", EstimatedCalories: 120, Difficulty: "intermediate", IsActive: true},
		{Name: "Lunges", Contraindications: []string{"knee"}, Duration: "3 sets of 12", EstimatedCalories: 110, Difficulty: "intermediate", IsActive: true},
		{Name: "Leg Press", Contraindications: []string{"knee"}, Duration: "3 sets of 10", EstimatedCalories: 130, Difficulty: "intermediate", IsActive: true},
		{Name: "Push-Ups", Contraindications: []string{"wrist", "shoulder"}, Duration: "3 sets of 12", EstimatedCalories: 100, Difficulty: "beginner", IsActive: true},
		{Name: "Bench Press", Contraindications: []string{"wrist", "shoulder"}, Duration: "3 sets of 10", EstimatedCalories: 140, Difficulty: "intermediate", IsActive: true},
		{Name: "Deadlifts", Contraindications: []string{"back"}, Duration: "3 sets of 8", EstimatedCalories: 150, Difficulty: "advanced", IsActive: true},
		{Name: "Running", Contraindications: []string{"knee", "ankle"}, Duration: "30 minutes", EstimatedCalories: 300, Difficulty: "intermediate", IsActive: true},
		{Name: "Jump Rope", Contraindications: []string{"knee", "ankle"}, Duration: "15 minutes", EstimatedCalories: 200, Difficulty: "intermediate", IsActive: true},
		{Name: "Stationary Bike", Contraindications: []string{}, Duration: "20 minutes", EstimatedCalories: 200, Difficulty: "beginner", IsActive: true},
		{Name: "Swimming", Contraindications: []string{}, Duration: "30 minutes", EstimatedCalories: 250, Difficulty: "intermediate", IsActive: true},
		{Name: "Walking", Contraindications: []string{}, Duration: "30 minutes", EstimatedCalories: 150, Difficulty: "beginner", IsActive: true},
		{Name: "Plank", Contraindications: []string{"shoulder"}, Duration: "3 sets of 45 seconds", EstimatedCalories: 75, Difficulty: "beginner", IsActive: true},
		{Name: "Seated Row", Contraindications: []string{"back"}, Duration: "3 sets of 12", EstimatedCalories: 110, Difficulty: "beginner", IsActive: true},
		{Name: "Glute Bridge", Contraindications: []string{}, Duration: "3 sets of 15", EstimatedCalories: 80, Difficulty: "beginner", IsActive: true},
		{Name: "Yoga Flow", Contraindications: []string{}, Duration: "30 minutes", EstimatedCalories: 120, Difficulty: "beginner", IsActive: true},
	}
	if err := db.Create(&exercises).Error; err != nil {
		return fmt.Errorf("failed to seed exercises: %w", err)
	}

	rules := []gormModels.SubstitutionRuleModel{
		{Kind: "meal", SourceName: "Peanut Butter Toast", TargetName: "Sunflower Butter Toast", Reason: "peanut-free spread with a similar macro profile", IsActive: true},
		{Kind: "meal", SourceName: "Shrimp Stir Fry", TargetName: "Chicken Breast", Reason: "shellfish-free protein with comparable calories", IsActive: true},
		{Kind: "meal", SourceName: "Greek Yogurt", TargetName: "Oatmeal", Reason: "dairy-free breakfast with steady carbs", IsActive: true},
		{Kind: "meal", SourceName: "Salmon", TargetName: "Chicken Breast", Reason: "fish-free lean protein", IsActive: true},
		{Kind: "meal", SourceName: "Scrambled Eggs", TargetName: "Oatmeal", Reason: "egg-free breakfast option", IsActive: true},
		{Kind: "exercise", SourceName: "Squats", TargetName: "Glute Bridge", Reason: "trains the same muscles without loading the knee", IsActive: true},
		{Kind: "exercise", SourceName: "Lunges", TargetName: "Glute Bridge", Reason: "hip-dominant alternative that spares the knee", IsActive: true},
		{Kind: "exercise", SourceName: "Running", TargetName: "Stationary Bike", Reason: "keeps the cardio volume with far less joint impact", IsActive: true},
		{Kind: "exercise", SourceName: "Jump Rope", TargetName: "Stationary Bike", Reason: "low-impact cardio swap", IsActive: true},
		{Kind: "exercise", SourceName: "Push-Ups", TargetName: "Seated Row", Reason: "upper-body work without loading the wrist", IsActive: true},
		{Kind: "exercise", SourceName: "Bench Press", TargetName: "Seated Row", Reason: "upper-body pull that keeps the wrist neutral", IsActive: true},
		{Kind: "exercise", SourceName: "Deadlifts", TargetName: "Glute Bridge", Reason: "posterior-chain work that is gentle on the back", IsActive: true},
	}
	if err := db.Create(&rules).Error; err != nil {
		return fmt.Errorf("failed to seed substitution rules: %w", err)
	}

	return nil
}
