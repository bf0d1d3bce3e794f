package engine

import (
	"math/rand"
	"slices"
)

type Role string

const (
	RoleSupport Role = "Support"
	RoleBottom  Role = "Bottom"
	RoleMiddle  Role = "Middle"
	RoleJungle  Role = "Jungle"
	RoleTop     Role = "Top"
	// RoleFill is the overflow marker once the named pool is exhausted.
	RoleFill Role = "Fill"
)

// RolePool is the five named roles handed out per team. Pool order is not
// significant; each name is used at most once per team.
var RolePool = []Role{RoleSupport, RoleBottom, RoleMiddle, RoleJungle, RoleTop}

// AssignRoles shuffles the team and pops one role from the pool per
// player. Players beyond the fifth all get Fill, which is what lets
// queues larger than ten resolve without error.
func AssignRoles(team []Player, rng *rand.Rand) []RoleAssignment {
	shuffled := slices.Clone(team)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pool := slices.Clone(RolePool)
	assigned := make([]RoleAssignment, 0, len(shuffled))
	for _, player := range shuffled {
		if len(pool) > 0 {
			role := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			assigned = append(assigned, RoleAssignment{Player: player, Role: role})
			continue
		}
		assigned = append(assigned, RoleAssignment{Player: player, Role: RoleFill})
	}
	return assigned
}
