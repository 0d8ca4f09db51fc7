// Package stategraph is the public facade over the state-graph execution
// engine: define a schema with per-field reducers, register nodes and
// edges, compile, and invoke or stream the compiled graph.
//
// A minimal graph:
//
//	s, _ := stategraph.DefineSchema(
//		stategraph.Field{Name: "text"},
//		stategraph.Field{Name: "reply"},
//	)
//	b := stategraph.NewBuilder(s)
//	b.AddNode("respond", func(ctx context.Context, st stategraph.State) (stategraph.State, error) {
//		return stategraph.State{"reply": "you said: " + st.GetString("text")}, nil
//	})
//	b.AddEdge("respond", stategraph.End)
//	b.SetEntry("respond")
//	g, _ := b.Compile(stategraph.Config{StepLimit: 5})
//
//	rt := stategraph.NewRuntime()
//	res, _ := rt.Invoke(ctx, g, stategraph.State{"text": "hello"}, stategraph.Options{})
package stategraph
