package nutrition

func SumFoods(foods []FoodItem) Totals {
	var t Totals
	for _, f := range foods {
		t = t.add(Totals{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat})
	}
	return t
}

func SumMeals(meals []Meal) Totals {
	var t Totals
	for _, m := range meals {
		t = t.add(SumFoods(m.Foods))
	}
	return t
}
