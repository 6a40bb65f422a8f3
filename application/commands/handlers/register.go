package handlers

import (
	"gooey-backend/application/commands"
	"gooey-backend/application/commands/bus"
)

// Register wires every command to its handler
func Register(b *bus.CommandBus, spaces *SpaceCommandHandler, notes *NoteCommandHandler) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateSpaceCommand{}, spaces},
		{commands.UpdateSpaceCommand{}, spaces},
		{commands.CreateNoteCommand{}, notes},
		{commands.UpdateNoteContentCommand{}, notes},
		{commands.DeleteNoteCommand{}, notes},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
