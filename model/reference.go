package model

// Circles is the fixed organizational grouping list seeded at bootstrap.
var Circles = []string{
	"BH", "CG", "JH", "RJ", "WB", "NESA", "OR", "KK", "MP", "HR",
	"UP East", "PB", "MG", "JK", "DL", "TN", "KL", "HP", "UP West", "AP", "GUJ",
}

// Activities is the fixed activity-type list seeded at bootstrap.
var Activities = []string{
	"BFS", "PLVA", "TLVA", "PLVA + STR", "TLVA + STR", "Verticality",
	"ALS", "RR", "JV - Thar", "RR Str.", "JV", "BFS Str.",
	"Civil Survey + Dwgs.", "Foundation Design", "Foundation Str.",
}
