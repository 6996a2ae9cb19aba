package telegram

import (
	"fmt"
	"strings"

	"daily-meal-planner/internal/metrics"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/reminder"
)

// FormatReminder renders a reminder as a Markdown message.
func FormatReminder(msg reminder.Message) string {
	return fmt.Sprintf("🔔 *%s*\n%s", msg.Title, msg.Body)
}

// FormatPlanMarkdownParts renders today's plan and its grocery list as two messages.
func FormatPlanMarkdownParts(plan *planner.MealPlan, groceries []string) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Today's Meal Plan*\n\n")

	slots := []string{"Breakfast", "Lunch", "Dinner", "Snacks"}
	for i, r := range plan.DailyPlan.Recipes() {
		fmt.Fprintf(&pb, "*%s*: %s (%.0f kcal)\n", slots[i], r.Name, r.Calories)
		if r.Description != "" {
			fmt.Fprintf(&pb, "_%s_\n", r.Description)
		}
		pb.WriteString("\n")
	}
	fmt.Fprintf(&pb, "🔥 *Total:* %.0f kcal", plan.TotalCalories)

	var sb strings.Builder
	sb.WriteString("🛒 *Grocery List*\n\n")
	for _, item := range groceries {
		fmt.Fprintf(&sb, "• %s\n", item)
	}

	return pb.String(), sb.String()
}

// FormatUsageReport renders recent generation usage and process health.
func FormatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Generation Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.TotalFailed)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String()
}
