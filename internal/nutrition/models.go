package nutrition

import "time"

type Category string

const (
	Breakfast Category = "breakfast"
	Lunch     Category = "lunch"
	Dinner    Category = "dinner"
	Snacks    Category = "snacks"
	Other     Category = "other"
)

// Categories in display order.
var Categories = []Category{Breakfast, Lunch, Dinner, Snacks, Other}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type FoodItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type Meal struct {
	ID       string     `json:"id"`
	Category Category   `json:"category"`
	Title    string     `json:"title"`
	Foods    []FoodItem `json:"foods"`
	LoggedAt time.Time  `json:"logged_at"`
}

type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t Totals) add(o Totals) Totals {
	return Totals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fat:      t.Fat + o.Fat,
	}
}

type CategoryMeals struct {
	Category Category `json:"category"`
	Meals    []Meal   `json:"meals"`
	Totals   Totals   `json:"totals"`
}

type Summary struct {
	Date        string          `json:"date"`
	Totals      Totals          `json:"totals"`
	CalorieGoal int             `json:"calorie_goal"`
	Remaining   float64         `json:"remaining"`
	Meals       []CategoryMeals `json:"meals"`
	Hydration   HydrationView   `json:"hydration"`
}

type MealRequest struct {
	Category Category   `json:"category"`
	Foods    []FoodItem `json:"foods"`
}

type WaterRequest struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"` // ml (default) or oz
}
