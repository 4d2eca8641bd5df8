package engine

// DefaultCharacters returns the built-in character pool
func DefaultCharacters() []Profile {
	return []Profile{
		{CharacterID: "crooner", Name: "The Crooner", Description: "Pop king who never puts down his milk tea.", Catchphrase: "Not bad at all!", Intelligence: 85, Charisma: 98, Luck: 95},
		{CharacterID: "karaoke-king", Name: "Karaoke King", Description: "Wild hair, bigger voice.", Catchphrase: "Same time next year, I'll still be here.", Intelligence: 88, Charisma: 92, Luck: 85},
		{CharacterID: "bubble-diva", Name: "Bubble Diva", Description: "Tiny frame, enormous lungs.", Catchphrase: "It's all just bubbles!", Intelligence: 90, Charisma: 95, Luck: 88},
		{CharacterID: "joker", Name: "The Joker", Description: "Heartfelt balladeer with a punchline for everything.", Catchphrase: "My only wish is world peace.", Intelligence: 95, Charisma: 90, Luck: 80},
		{CharacterID: "comedy-king", Name: "King of Comedy", Description: "A comedian who is secretly a tragic actor.", Catchphrase: "I'll take care of you!", Intelligence: 100, Charisma: 90, Luck: 82},
		{CharacterID: "gambler", Name: "The Gambler", Description: "Card sharp with his own soundtrack.", Catchphrase: "Because I am the God of Gamblers.", Intelligence: 98, Charisma: 99, Luck: 99},
		{CharacterID: "sweetheart", Name: "The Sweetheart", Description: "Soft voice, lethal charm.", Catchphrase: "Stand up and smile!", Intelligence: 92, Charisma: 100, Luck: 85},
		{CharacterID: "wolf-warrior", Name: "Wolf Warrior", Description: "Justice always catches up.", Catchphrase: "However far, we will reach you.", Intelligence: 85, Charisma: 80, Luck: 90},
		{CharacterID: "e-tycoon", Name: "E-commerce Tycoon", Description: "Claims to have no interest in money.", Catchphrase: "I have no interest in money.", Intelligence: 120, Charisma: 60, Luck: 75},
		{CharacterID: "phone-maker", Name: "Phone Maker", Description: "King of value for money.", Catchphrase: "Are you OK?", Intelligence: 115, Charisma: 85, Luck: 80},
		{CharacterID: "chili-queen", Name: "Chili Queen", Description: "National treasure of the hot sauce aisle.", Catchphrase: "Add a little spice to every meal.", Intelligence: 105, Charisma: 80, Luck: 90},
		{CharacterID: "penguin-king", Name: "Penguin King", Description: "Pay to win, every time.", Catchphrase: "Did the top-up go through?", Intelligence: 118, Charisma: 50, Luck: 95},
		{CharacterID: "iron-lady", Name: "Iron Lady", Description: "Owns the core technology.", Catchphrase: "Good is not enough, own the core tech.", Intelligence: 110, Charisma: 60, Luck: 70},
		{CharacterID: "giant", Name: "The Giant", Description: "Moving Great Wall and meme legend.", Catchphrase: "Nice shot!", Intelligence: 95, Charisma: 90, Luck: 85},
		{CharacterID: "hurdler", Name: "The Hurdler", Description: "Fastest man over the barriers.", Catchphrase: "That is real speed.", Intelligence: 90, Charisma: 92, Luck: 80},
		{CharacterID: "lipstick-king", Name: "Lipstick King", Description: "Sells anything in a live stream.", Catchphrase: "Oh my god! Buy it!", Intelligence: 100, Charisma: 98, Luck: 90},
		{CharacterID: "teacher-luo", Name: "Teacher Luo", Description: "Industry jinx, always making friends.", Catchphrase: "Understanding is everything.", Intelligence: 110, Charisma: 95, Luck: 10},
		{CharacterID: "vlogger", Name: "The Vlogger", Description: "Beauty and talent in one.", Catchphrase: "It's me again.", Intelligence: 105, Charisma: 90, Luck: 85},
		{CharacterID: "heir", Name: "The Heir", Description: "Nation's favorite rich kid.", Catchphrase: "Fight me one on one.", Intelligence: 95, Charisma: 70, Luck: 99},
		{CharacterID: "influencer", Name: "First Influencer", Description: "The original internet celebrity.", Catchphrase: "Three hundred years back, three hundred forward...", Intelligence: 120, Charisma: 10, Luck: 100},
	}
}

type layoutBuilder struct {
	spaces []SpaceConfig
}

func (lb *layoutBuilder) add(name string, kind SpaceKind, district string, price int64) int {
	id := len(lb.spaces)
	sc := SpaceConfig{ID: id, Name: name, Kind: kind, District: district, Successors: []int{id + 1}}
	if kind == KindOwnable {
		sc.Price = price
	}
	lb.spaces = append(lb.spaces, sc)
	return id
}

// DefaultGameConfig returns the built-in Shanghai board: an outer loop of 56
// spaces plus a six-space inner shortcut branching at People's Square and
// rejoining at Xujiahui.
func DefaultGameConfig() *GameConfig {
	lb := &layoutBuilder{}
	lb.add("Start", KindStart, "Pudong", 0)

	pudong := []string{"Zhangjiang Hi-Tech", "Disneyland", "Chuansha", "Jinqiao", "Century Park",
		"Science Museum", "Oriental Art Center", "Yuanshen Stadium", "Minsheng Road", "Lujiazui Center"}
	for i, name := range pudong {
		kind := KindOwnable
		if i == 3 || i == 7 {
			kind = KindRandomEvent
		}
		lb.add(name, kind, "Pudong", 15_000_000+int64(i)*1_000_000)
	}
	lb.add("Oriental Pearl Tower", KindOwnable, "Pudong", 60_000_000)

	north := []string{"Bund Tunnel", "Waibaidu Bridge", "East Nanjing Road", "Peace Hotel", "Bund 18",
		"Fuzhou Road", "People's Square", "Grand Theatre", "West Nanjing Road", "Jing'an Temple",
		"Jiuguang Plaza", "Caojiadu", "Changshou Road", "Zhongshan Park", "Hongqiao Hub"}
	peoplesSquare := 0
	for i, name := range north {
		kind := KindOwnable
		switch i {
		case 4:
			kind = KindBankBonus
		case 8:
			kind = KindShop
		case 12:
			kind = KindRandomEvent
		}
		price := int64(40_000_000)
		if name == "East Nanjing Road" || name == "Jing'an Temple" {
			price = 50_000_000
		}
		district := "Changning"
		if i < 6 {
			district = "Huangpu"
		} else if i < 12 {
			district = "Jing'an"
		}
		id := lb.add(name, kind, district, price)
		if name == "People's Square" {
			peoplesSquare = id
		}
	}
	lb.add("Hongqiao Airport", KindRestArea, "Changning", 0)

	west := []string{"Shanghai Zoo", "Gubei", "Cloud Nine", "Jiao Tong University", "Xujiahui",
		"Grand Gateway", "Shanghai Stadium", "Caohejing", "Jinjiang Park", "South Mall",
		"Xinzhuang", "Minhang Development Zone"}
	xujiahui := 0
	for i, name := range west {
		kind := KindOwnable
		switch i {
		case 2:
			kind = KindIncarceration
		case 7:
			kind = KindTaxLevy
		case 10:
			kind = KindRandomEvent
		}
		price := int64(15_000_000)
		district := "Suburbs"
		if i < 7 {
			price = 30_000_000
			district = "Xuhui"
		}
		id := lb.add(name, kind, district, price)
		if name == "Xujiahui" {
			xujiahui = id
		}
	}
	lb.add("Old Street", KindShop, "Suburbs", 0)

	south := []string{"Qibao", "East China University", "South Railway Station", "Botanical Garden",
		"Riverside Avenue", "West Bund Art", "Longhua Temple", "Expo Park", "China Art Museum",
		"Mercedes-Benz Arena", "Houtan", "Qiantan Taikoo Li", "Sanlin", "Yuqiao", "Kangqiao"}
	for i, name := range south {
		kind := KindOwnable
		switch i {
		case 5:
			kind = KindRandomEvent
		case 11:
			kind = KindShop
		}
		district := "Pudong"
		if i < 8 {
			district = "Xuhui"
		}
		lb.add(name, kind, district, 25_000_000)
	}
	lb.spaces[len(lb.spaces)-1].Successors = []int{0}

	shortcut := []string{"Xintiandi", "Huaihai Road", "Fuxing Park", "Tianzifang", "Dapuqiao", "Ruijin Hospital"}
	first := len(lb.spaces)
	for i, name := range shortcut {
		kind := KindOwnable
		price := int64(55_000_000)
		if name == "Xintiandi" {
			price = 80_000_000
		}
		switch i {
		case 2:
			kind = KindRandomEvent
		case 5:
			kind = KindShop
		}
		lb.add(name, kind, "Huangpu", price)
	}
	lb.spaces[len(lb.spaces)-1].Successors = []int{xujiahui}
	lb.spaces[peoplesSquare].Successors = append(lb.spaces[peoplesSquare].Successors, first)

	return &GameConfig{
		Name:        "shanghai",
		Description: "Shanghai city loop with an inner-ring shortcut from People's Square to Xujiahui",
		Rules:       DefaultRules(),
		StartSpace:  0,
		Board:       lb.spaces,
	}
}
