package server

import (
	"log"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"pong/world"
)

func playerFields(p world.Player) map[string]interface{} {
	return map[string]interface{}{
		"y":      p.Box.Y,
		"moving": p.Moving,
		"score":  p.Score,
	}
}

// statusProto renders a match status as a protobuf Struct.
func statusProto(st Status) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":      st.ID,
		"players": st.Players,
		"state":   st.State.State.String(),
		"left":    playerFields(st.State.Left),
		"right":   playerFields(st.State.Right),
		"ball": map[string]interface{}{
			"x":  st.State.Ball.X,
			"y":  st.State.Ball.Y,
			"dx": st.State.Ball.DX,
			"dy": st.State.Ball.DY,
		},
	})
}

func (s *Server) onDebugMatch(w http.ResponseWriter, r *http.Request) {
	st, err := statusProto(s.match.Status())
	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	b, err := protojson.MarshalOptions{Multiline: true}.Marshal(st)
	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}
