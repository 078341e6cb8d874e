package entity

type Role string

const (
	HumanRole    Role = "human"
	ComputerRole Role = "computer"
)

// Player is one side of a match. Wins counts rounds won in the current match.
type Player struct {
	Name   string `json:"name"`
	Marker Marker `json:"marker"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role"`
	Wins   int    `json:"wins"`
}

func NewPlayer(name string, marker Marker, avatar string, role Role) *Player {
	return &Player{
		Name:   name,
		Marker: marker,
		Avatar: avatar,
		Role:   role,
	}
}

func (that *Player) IsComputer() bool {
	return that.Role == ComputerRole
}

func (that *Player) IsHuman() bool {
	return that.Role == HumanRole
}

func (that *Player) ResetWins() {
	that.Wins = 0
}
