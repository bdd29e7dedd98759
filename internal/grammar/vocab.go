package grammar

// Vocabularies grounded on original_source/storage/parsers/menu_grammar.py.

var knownSectionHeadings = map[string]bool{
	"pizza": true, "pizzas": true, "specialty pizzas": true, "gourmet pizzas": true, "gourmet pizza": true,
	"appetizers": true, "starters": true, "sides": true,
	"salads": true, "soups": true, "soup & salad": true,
	"sandwiches": true, "subs": true, "hoagies": true, "wraps": true,
	"burgers": true, "hamburgers": true,
	"wings": true, "chicken wings": true, "buffalo wings": true, "fresh buffalo wings": true,
	"pasta": true, "pastas": true, "italian classics": true,
	"entrees": true, "dinner": true, "lunch": true,
	"desserts": true, "sweets": true,
	"beverages": true, "drinks": true, "cold drinks": true, "hot drinks": true,
	"calzones": true, "stromboli": true, "calzones & stromboli": true,
	"seafood": true, "fish": true,
	"kids menu": true, "children's menu": true,
	"specials": true, "daily specials": true,
	"toppings": true, "extras": true, "add ons": true, "add-ons": true,
	"club sandwiches": true, "melt sandwiches": true,
	"wraps city": true, "build your own burger!": true,
	"build your own calzone!": true, "build your own!": true,
}

var sizeWords = []string{
	"x-large", "extra large", "small", "medium", "large",
	"xlarge", "sml", "lrg", "personal", "family", "party",
	"whole", "single", "double", "triple", "regular", "deluxe",
	"half", "slice", "sm", "md", "lg", "xl",
}

var connectorWords = map[string]bool{
	"and": true, "or": true, "&": true, "+": true, "w/": true, "with": true, "for": true,
}

var commonToppings = map[string]bool{
	"pepperoni": true, "sausage": true, "mushroom": true, "mushrooms": true, "onion": true, "onions": true,
	"pepper": true, "peppers": true, "green pepper": true, "green peppers": true,
	"olive": true, "olives": true, "black olive": true, "black olives": true,
	"bacon": true, "ham": true, "salami": true, "meatball": true, "meatballs": true,
	"pineapple": true, "jalapeno": true, "jalapenos": true, "banana pepper": true, "banana peppers": true,
	"tomato": true, "tomatoes": true, "spinach": true, "broccoli": true, "artichoke": true,
	"garlic": true, "basil": true, "oregano": true,
	"anchovies": true, "shrimp": true, "clam": true, "clams": true,
	"roasted red pepper": true, "sun dried tomato": true, "eggplant": true,
	"mozzarella": true, "ricotta": true, "provolone": true, "parmesan": true, "cheddar": true, "feta": true,
	"american cheese": true, "swiss": true, "blue cheese": true, "fresh mozzarella": true,
	"chicken": true, "steak": true, "philly steak": true, "grilled chicken": true,
	"buffalo chicken": true, "bbq chicken": true, "hamburger": true, "ground beef": true,
	"turkey": true, "roast beef": true, "tuna": true, "corned beef": true, "gyro": true,
	"ranch": true, "mayo": true, "mayonnaise": true, "mustard": true, "ketchup": true, "hot sauce": true,
	"bbq sauce": true, "marinara": true, "alfredo sauce": true, "pesto sauce": true,
	"ranch dressing": true, "sour cream": true, "salsa": true, "tzatziki": true,
	"russian dressing": true, "caesar dressing": true, "thousand island": true,
	"blue cheese base": true,
	"lettuce": true, "pickles": true, "coleslaw": true, "french fries": true, "chips": true,
	"avocado": true, "beans": true, "sauerkraut": true,
}

var sauceTokens = map[string]bool{
	"marinara": true, "marinara sauce": true, "alfredo": true, "alfredo sauce": true,
	"pesto": true, "pesto sauce": true, "bbq sauce": true, "hot sauce": true,
	"ranch": true, "ranch dressing": true, "ranch sauce": true,
	"blue cheese": true, "blue cheese base": true, "bleu cheese": true,
	"garlic sauce": true, "red sauce": true, "white sauce": true, "buffalo sauce": true,
	"1000 island": true, "thousand island": true, "russian dressing": true,
	"caesar dressing": true, "tzatziki": true, "mayo": true, "mayonnaise": true,
	"tomato sauce": true, "olive oil": true, "1000 island base": true,
	"salsa": true, "sour cream": true,
}

var preparationTokens = map[string]bool{
	"fried": true, "grilled": true, "baked": true, "roasted": true, "steamed": true,
	"sauteed": true, "braised": true, "breaded": true, "crispy": true, "smoked": true,
	"shaved": true, "diced": true, "chopped": true, "sliced": true, "stuffed": true,
	"marinated": true, "homemade": true,
}

var flavorTokens = map[string]bool{
	"hot": true, "mild": true, "medium": true, "honey bbq": true, "bbq": true,
	"garlic parm": true, "garlic parmesan": true, "garlic romano": true,
	"teriyaki": true, "buffalo": true, "spicy": true, "sweet": true,
	"cajun": true, "lemon pepper": true, "mango habanero": true,
	"sweet chili": true, "sriracha": true, "jack daniels bbq": true,
	"plain": true, "naked": true, "original": true, "honey mustard": true,
}

func hasTwoOrMoreToppingHits(lower string) bool {
	hits := 0
	for t := range commonToppings {
		if containsSubstr(lower, t) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}
