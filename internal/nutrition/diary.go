package nutrition

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

const dayLayout = "2006-01-02"

// Diary is the meal and water log of the current day.
type Diary struct {
	mu          sync.Mutex
	now         func() time.Time
	calorieGoal int
	day         string
	meals       []Meal
	hydration   *Hydration
}

func NewDiary(calorieGoal int, hydrationGoalL float64, now func() time.Time) *Diary {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Diary{
		now:         now,
		calorieGoal: calorieGoal,
		day:         t.Format(dayLayout),
		hydration:   NewHydration(hydrationGoalL, t),
	}
}

// AddMeal logs foods under category. Repeat meals of a category are
// titled "Lunch #2", "Lunch #3" and so on.
func (d *Diary) AddMeal(category Category, foods []FoodItem) (Meal, error) {
	if !category.Valid() {
		return Meal{}, fmt.Errorf("unknown meal category %q", category)
	}
	if len(foods) == 0 {
		return Meal{}, fmt.Errorf("meal needs at least one food")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(d.now())

	n := 1
	for _, m := range d.meals {
		if m.Category == category {
			n++
		}
	}
	title := titleCase(string(category))
	if n > 1 {
		title = fmt.Sprintf("%s #%d", title, n)
	}

	items := make([]FoodItem, len(foods))
	copy(items, foods)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
	meal := Meal{
		ID:       uuid.NewString(),
		Category: category,
		Title:    title,
		Foods:    items,
		LoggedAt: d.now(),
	}
	d.meals = append(d.meals, meal)
	return meal, nil
}

func (d *Diary) Meals() []Meal {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(d.now())
	out := make([]Meal, len(d.meals))
	copy(out, d.meals)
	return out
}

// ByCategory groups meals in display order, omitting empty categories.
func (d *Diary) ByCategory() []CategoryMeals {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(d.now())
	return groupMeals(d.meals)
}

func (d *Diary) AddWater(ml float64) HydrationView {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.now()
	d.rollover(t)
	d.hydration.AddWater(ml, t)
	return d.hydration.View()
}

func (d *Diary) Summary() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(d.now())
	totals := SumMeals(d.meals)
	return Summary{
		Date:        d.day,
		Totals:      totals,
		CalorieGoal: d.calorieGoal,
		Remaining:   float64(d.calorieGoal) - totals.Calories,
		Meals:       groupMeals(d.meals),
		Hydration:   d.hydration.View(),
	}
}

// Rollover starts a new day once the clock has moved past the diary's day:
// meals are cleared and hydration closes out. Every read and write also rolls
// over first, so the scheduled call only makes the reset eager.
func (d *Diary) Rollover() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover(d.now())
}

func (d *Diary) rollover(t time.Time) {
	day := t.Format(dayLayout)
	if day == d.day {
		return
	}
	d.meals = nil
	d.day = day
	d.hydration.Rollover(t)
}

// ScheduleRollover registers the daily reset on c. The caller starts and
// stops c.
func ScheduleRollover(c *cron.Cron, spec string, d *Diary) error {
	return c.AddFunc(spec, func() {
		d.Rollover()
		log.Printf("nutrition: rolled over to %s", d.Summary().Date)
	})
}

func groupMeals(meals []Meal) []CategoryMeals {
	var out []CategoryMeals
	for _, c := range Categories {
		var group []Meal
		for _, m := range meals {
			if m.Category == c {
				group = append(group, m)
			}
		}
		if len(group) == 0 {
			continue
		}
		out = append(out, CategoryMeals{Category: c, Meals: group, Totals: SumMeals(group)})
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
