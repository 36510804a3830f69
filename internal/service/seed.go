package service

// Reserved author of the curated sample data. SeedMovies checks for records
// by this subject to decide whether it already ran.
const (
	SeedUserID   = "seed_bot"
	SeedUsername = "HypeShelf_Bot"
)

type seedMovie struct {
	title     string
	genre     string
	link      string
	blurb     string
	staffPick bool
}

var seedMovies = []seedMovie{
	{
		title:     "Interstellar",
		genre:     "sci-fi",
		link:      "https://www.imdb.com/title/tt0816692/",
		blurb:     "A jaw-dropping journey through wormholes and time dilation. Nolan at his most ambitious, emotionally wrecking and visually stunning.",
		staffPick: true,
	},
	{
		title: "Blade Runner 2049",
		genre: "sci-fi",
		link:  "https://www.imdb.com/title/tt1856101/",
		blurb: "Deakins' cinematography alone is worth the watch. A slow burn that rewards patience with one of the most beautiful films ever made.",
	},
	{
		title: "Dune: Part Two",
		genre: "sci-fi",
		link:  "https://www.imdb.com/title/tt15239678/",
		blurb: "Villeneuve delivers an epic on a scale rarely seen. The sandworm ride sequence alone makes it a must-watch.",
	},
	{
		title:     "Parasite",
		genre:     "drama",
		link:      "https://www.imdb.com/title/tt6751668/",
		blurb:     "Bong Joon-ho's masterclass in genre-blending. You think you know where it's going. You don't.",
		staffPick: true,
	},
	{
		title: "Get Out",
		genre: "horror",
		link:  "https://www.imdb.com/title/tt5052448/",
		blurb: "Jordan Peele's debut is one of the sharpest horror films in decades. Terrifying, funny, and devastatingly smart.",
	},
	{
		title: "Hereditary",
		genre: "horror",
		link:  "https://www.imdb.com/title/tt7784604/",
		blurb: "Ari Aster's debut is a slow, relentless descent into dread. The most genuinely disturbing horror film of the 2010s.",
	},
	{
		title:     "Everything Everywhere All At Once",
		genre:     "action",
		link:      "https://www.imdb.com/title/tt6710474/",
		blurb:     "Chaotic, profound, and somehow deeply moving. Michelle Yeoh carries an everything-bagel-sized multiverse on her shoulders.",
		staffPick: true,
	},
	{
		title: "Mad Max: Fury Road",
		genre: "action",
		link:  "https://www.imdb.com/title/tt1392190/",
		blurb: "Two hours of pure kinetic cinema. George Miller somehow made the greatest action movie ever at age 70.",
	},
	{
		title: "The Grand Budapest Hotel",
		genre: "comedy",
		link:  "https://www.imdb.com/title/tt2278388/",
		blurb: "Wes Anderson at peak Wes Anderson. A laugh-out-loud caper wrapped in a perfectly symmetrical pink box.",
	},
	{
		title: "Past Lives",
		genre: "drama",
		link:  "https://www.imdb.com/title/tt13238346/",
		blurb: "A quiet devastator. Celine Song's debut feature will leave you aching about the lives not lived.",
	},
	{
		title: "Free Solo",
		genre: "documentary",
		link:  "https://www.imdb.com/title/tt7775622/",
		blurb: "Alex Honnold free-soloing El Capitan. Watching it is physically stressful. One of the most extraordinary human achievements ever filmed.",
	},
	{
		title: "Oppenheimer",
		genre: "drama",
		link:  "https://www.imdb.com/title/tt15398776/",
		blurb: "Three hours that feel like ninety minutes. Cillian Murphy's best performance and Nolan's most mature film.",
	},
}
