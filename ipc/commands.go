package ipc

import "github.com/genniabot/gbot-core/model"

// Events the bot sends.
const (
	CmdGetRoomInfo   = "get_room_info"
	CmdForceStart    = "force_start"
	CmdTran          = "tran"
	CmdChangeHost    = "change_host"
	CmdSetSpectating = "set_spectating"
	CmdAttack        = "attack"
)

// Attack moves the army on from into to; half keeps half of it behind.
func (c *Connection) Attack(from, to model.Position, half bool) error {
	return c.Emit(CmdAttack, from, to, half)
}

func (c *Connection) GetRoomInfo() error { return c.Emit(CmdGetRoomInfo) }

func (c *Connection) ForceStart() error { return c.Emit(CmdForceStart) }

// TransferHost gives up the host role and, when playerID is set, hands it
// to that player.
func (c *Connection) TransferHost(playerID string) error {
	if err := c.Emit(CmdTran); err != nil {
		return err
	}
	if playerID == "" {
		return nil
	}
	return c.Emit(CmdChangeHost, playerID)
}

func (c *Connection) SetSpectating(on bool) error { return c.Emit(CmdSetSpectating, on) }
