package planner

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/codeplanner/internal/model"
)

const generateSystemPrompt = `
You are an expert software architect and developer. Your task is to break down a project description
into specific, actionable tasks with implementation guides and code examples.

For the given project description, please provide a JSON array of tasks where each task includes:
1. A clear, specific title
2. A detailed description of what needs to be accomplished
3. A comprehensive step-by-step implementation guide
4. A code snippet example showing how to implement the task

The tasks should:
- Cover all key aspects of the project
- Be logically ordered from foundation to advanced features
- Be specific enough that each task can be completed in 1-3 hours
- Include both frontend and backend tasks as appropriate
- Consider best practices, security, and performance
- Start with infrastructure/setup tasks before feature implementation

IMPORTANT: Your response must be ONLY a valid JSON array of objects with these exact fields:
[
  {
    "id": "unique-id-string",
    "title": "Task title",
    "description": "Detailed task description",
    "implementation": "Step-by-step implementation guide",
    "codeSnippet": "// Code example for this task",
    "completed": false,
    "createdAt": "ISO date string"
  },
  ...
]
`

func updatePrompt(task model.Task, requirements string) string {
	var b strings.Builder
	b.WriteString(`
You are a senior developer helping update a task within a larger project.
Given the task details below, please update the implementation guide and code snippet
to incorporate the new requirements without changing the core purpose of the task.

TASK DETAILS:
`)
	fmt.Fprintf(&b, "Title: %s\n", task.Title)
	fmt.Fprintf(&b, "Description: %s\n", task.Description)
	if task.Implementation != "" {
		fmt.Fprintf(&b, "Current Implementation: %s\n", task.Implementation)
	}
	if task.CodeSnippet != "" {
		fmt.Fprintf(&b, "Current Code Snippet: %s\n", task.CodeSnippet)
	}
	fmt.Fprintf(&b, "\nNEW REQUIREMENTS TO INCORPORATE:\n%s\n", requirements)
	b.WriteString(`
Please provide:
1. An updated, detailed implementation guide that explains how to complete this task with the new requirements.
2. A practical code snippet that demonstrates the implementation.

IMPORTANT: Your response must maintain JSON format with ONLY two fields:
{
  "implementation": "Step-by-step implementation details incorporating the new requirements...",
  "codeSnippet": "// Code example that implements the solution with new requirements..."
}`)
	return b.String()
}
