package ipc

import "github.com/genniabot/gbot-core/model"

// Events the game server sends.
const (
	EventUpdateRoom  = "update_room"
	EventSetPlayerID = "set_player_id"
	EventGameStarted = "game_started"
	EventGameUpdate  = "game_update"
	EventGameOver    = "game_over"
	EventGameEnded   = "game_ended"
	EventError       = "error"
)

// Room is the lobby snapshot carried by update_room. Only the fields the
// bot reads are decoded.
type Room struct {
	ID          string   `json:"id"`
	RoomName    string   `json:"roomName"`
	GameStarted bool     `json:"gameStarted"`
	Players     []Player `json:"players"`
}

type Player struct {
	ID         string      `json:"id"`
	Username   string      `json:"username"`
	Color      model.Color `json:"color"`
	IsRoomHost bool        `json:"isRoomHost"`
	ForceStart bool        `json:"forceStart"`
	Spectating bool        `json:"spectating"`
}

// Find returns the player with the given id.
func (r Room) Find(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// InitGameInfo is the single argument of game_started.
type InitGameInfo struct {
	King      model.Position `json:"king"`
	MapWidth  int            `json:"mapWidth"`
	MapHeight int            `json:"mapHeight"`
}

// UserData identifies a player in game_over and game_ended.
type UserData struct {
	ID       string      `json:"id,omitempty"`
	Username string      `json:"username"`
	Color    model.Color `json:"color"`
}
