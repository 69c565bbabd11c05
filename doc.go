/*
Package stitch reconstructs per-request execution traces from independently
collected per-thread logs.

A hand-authored graph model describes the event sequences each thread may log
and how events on different threads cause one another. Stitch replays every
thread's lines against the model, joins the resulting events across threads and
hosts, groups joined threads into requests and corrects clock skew between hosts
so that every cross-host cause precedes its effect.

# Pipeline

  - Replay: each (host, target, thread) line sequence becomes thread instances made of paces.
  - Join: emitting paces are paired with receiving paces per join declaration.
  - Assemble: connected thread instances become request instances with a main path.
  - Clock: remote joins of valid requests bound per-host offsets, which are then applied.

# Usage

	b := dsl.New()
	client := b.Fragment("client")
	client.Node("C1").RequestStart().On("send", "C2")
	client.Node("C2").Terminal("SUCCESS")
	// ... more fragments, b.Thread(...), b.Join(...)

	model, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := stitch.New(model, stitch.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	src, err := jsonl.Open("client.jsonl", "server.jsonl")
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Run(ctx, src)
	if err != nil {
		log.Fatal(err)
	}
	for id, r := range res.Requests {
		fmt.Println(id, r.State, r.Lapse())
	}
*/
package stitch
