package mcp

import "github.com/mark3labs/mcp-go/mcp"

var searchKnowledgeTool = mcp.NewTool("search_knowledge",
	mcp.WithDescription("Search the physiotherapy knowledge base (assessment guides and exercise programs) by meaning."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query, e.g. a symptom or body part"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
	mcp.WithString("type_filter",
		mcp.Description("Restrict results to one collection"),
		mcp.Enum("assessment", "exercise"),
	),
	mcp.WithString("category",
		mcp.Description("Restrict results to one ingested category"),
	),
)

var askQuestionTool = mcp.NewTool("ask_question",
	mcp.WithDescription("Answer a quick physiotherapy question outside an intake conversation, grounded in the knowledge base."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to answer"),
	),
)
