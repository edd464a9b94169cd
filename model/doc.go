// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides access to a generative model of the Google
// Generative Language API.
//
// A [GenerativeModel] is bound to one model name and carries the defaults sent
// with every request: generation config, safety settings, tools, tool config,
// system instruction and an optional cached content reference.
//
//	m, err := model.New("gemini-1.5-flash",
//		model.WithAPIKey(os.Getenv("GOOGLE_API_KEY")),
//		model.WithSystemInstructionText("Answer in one sentence."),
//	)
//	if err != nil {
//		return err
//	}
//	resp, err := m.GenerateContent(ctx, model.Text("Why is the sky blue?"))
//	if err != nil {
//		return err
//	}
//	text, err := resp.Text()
//
// # Streaming
//
// [GenerativeModel.GenerateContentStream] returns a [StreamResult]. Its Stream
// method yields chunks as the server sends them, and Response returns the
// chunks merged into one response:
//
//	res, err := m.GenerateContentStream(ctx, model.Text("Write a story."))
//	if err != nil {
//		return err
//	}
//	defer res.Close()
//	for chunk, err := range res.Stream() {
//		if err != nil {
//			return err
//		}
//		text, _ := chunk.Text()
//		fmt.Print(text)
//	}
//
// # Chat
//
// A [ChatSession] keeps the conversation history and sends it with every
// message. A turn is recorded only when the model returns a candidate:
//
//	cs, err := m.StartChat()
//	if err != nil {
//		return err
//	}
//	resp, err := cs.SendText(ctx, "Hello, I have 2 dogs.")
//
// # Blocked responses
//
// [Response.Text] and [Response.FunctionCalls] return a [*types.ResponseError]
// when the prompt was blocked or the first candidate finished because of
// SAFETY, RECITATION or LANGUAGE.
package model
