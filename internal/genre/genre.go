// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package genre maps the storefront's free-form genre and category tags onto
// a small set of presentation buckets. Classification is open: tags with no
// canonical bucket pass through as their own lowercase key, so the bucket
// vocabulary grows with whatever tags the storefront invents.
package genre

import "strings"

// MiscKey is the synthetic bucket that low-share buckets are merged into by
// the affinity sampler. It is never produced by Classify itself.
const MiscKey = "misc"

// defaultEmoji decorates buckets that are not in the canonical table.
const defaultEmoji = "🎮"

// Info describes how a bucket is presented.
type Info struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// category is one canonical bucket and the raw tags that map into it.
// A tag may map into more than one bucket ("Survival Horror" is both
// survival and horror).
type category struct {
	key   string
	label string
	emoji string
	names []string
}

var categories = []category{
	{"fps_shooter", "Shooter", "🔫", []string{"FPS", "Shooter", "First-Person Shooter", "Third-Person Shooter"}},
	{"rpg", "RPG", "⚔️", []string{"RPG", "JRPG", "Action RPG", "Turn-Based RPG", "CRPG", "Role-Playing"}},
	{"strategy", "Strategy", "🧠", []string{"Strategy", "Real-Time Strategy", "Turn-Based Strategy", "Tower Defense", "RTS", "4X", "Grand Strategy"}},
	{"survival", "Survival", "🏕️", []string{"Survival", "Survival Horror", "Crafting", "Base Building", "Open World Survival Craft"}},
	{"simulation", "Simulation", "🏗️", []string{"Simulation", "Life Sim", "Farming Sim", "Management", "City Builder", "Building"}},
	{"action", "Action", "💥", []string{"Action", "Hack and Slash", "Beat 'em up", "Action-Adventure"}},
	{"adventure", "Adventure", "🗺️", []string{"Adventure", "Point & Click", "Walking Simulator"}},
	{"puzzle", "Puzzle", "🧩", []string{"Puzzle", "Logic", "Hidden Object"}},
	{"platformer", "Platformer", "🍄", []string{"Platformer", "2D Platformer", "3D Platformer", "Precision Platformer"}},
	{"horror", "Horror", "👻", []string{"Horror", "Psychological Horror", "Survival Horror"}},
	{"racing", "Racing", "🏎️", []string{"Racing", "Driving", "Automobile Sim"}},
	{"sports", "Sports", "⚽", []string{"Sports", "Football", "Basketball", "Baseball", "Soccer", "Golf"}},
	{"sandbox", "Open World", "🌍", []string{"Sandbox", "Open World", "Exploration"}},
	{"roguelike", "Roguelike", "💀", []string{"Roguelike", "Roguelite", "Roguevania", "Procedural Generation"}},
	{"multiplayer", "Multiplayer", "👥", []string{"Massively Multiplayer", "MMO", "MMORPG", "Co-op", "Multiplayer"}},
	{"casual", "Casual", "🎲", []string{"Casual", "Clicker", "Idle", "Card Game", "Board Game"}},
	{"visual_novel", "Visual Novel", "📖", []string{"Visual Novel", "Dating Sim", "Choose Your Own Adventure", "Interactive Fiction"}},
	{"fighting", "Fighting", "🥊", []string{"Fighting", "Martial Arts"}},
	{"indie", "Indie", "🎨", []string{"Indie"}},
}

var (
	infoByKey    map[string]Info
	bucketsByTag map[string][]string
)

func init() {
	infoByKey = make(map[string]Info, len(categories)+1)
	bucketsByTag = make(map[string][]string)

	for _, c := range categories {
		infoByKey[c.key] = Info{Key: c.key, Label: c.label, Emoji: c.emoji}
		for _, name := range c.names {
			tag := strings.ToLower(name)
			bucketsByTag[tag] = append(bucketsByTag[tag], c.key)
		}
	}
	infoByKey[MiscKey] = Info{Key: MiscKey, Label: "Misc", Emoji: defaultEmoji}
}

// Classify maps raw tag strings to a deduplicated list of bucket keys, in
// order of first appearance. Matching is case-insensitive and exact per tag.
// Tags outside the canonical table become their own lowercase bucket.
func Classify(tags []string) []string {
	var keys []string
	seen := make(map[string]struct{}, len(tags))
	add := func(key string) {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if buckets, ok := bucketsByTag[t]; ok {
			for _, key := range buckets {
				add(key)
			}
			continue
		}
		add(t)
	}
	return keys
}

// InfoFor returns presentation metadata for a bucket key. Open buckets keep
// their key as the label and get the default emoji.
func InfoFor(key string) Info {
	if info, ok := infoByKey[key]; ok {
		return info
	}
	return Info{Key: key, Label: key, Emoji: defaultEmoji}
}
