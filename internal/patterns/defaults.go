package patterns

// defaultCategories is the built-in pattern table for a support assistant.
var defaultCategories = []Category{
	{
		Name:           "greeting",
		Conversational: true,
		Triggers: []string{
			"hello", "hi", "hey", "good morning", "good afternoon",
			"good evening", "hi there", "hello there", "greetings",
		},
		Responses: []string{
			"Hello! How can I help you today?",
			"Hi there! What can I do for you?",
			"Hey! What would you like to know?",
		},
	},
	{
		Name:           "farewell",
		Conversational: true,
		Triggers: []string{
			"bye", "goodbye", "see you", "see you later", "talk to you later",
			"have a good day", "take care",
		},
		Responses: []string{
			"Goodbye! Feel free to come back if you have more questions.",
			"Take care! I'm here whenever you need help.",
			"See you! Have a great day.",
		},
	},
	{
		Name:           "thanks",
		Conversational: true,
		Triggers: []string{
			"thank you", "thanks", "thanks a lot", "thank you so much",
			"appreciate it", "that helped",
		},
		Responses: []string{
			"You're welcome! Anything else I can help with?",
			"Happy to help! Let me know if there's anything else.",
			"Glad I could help!",
		},
	},
	{
		Name:           "compliment",
		Conversational: true,
		Triggers: []string{
			"you are great", "you are awesome", "great job", "well done",
			"you are helpful", "nice work",
		},
		Responses: []string{
			"Thank you! I'm here to help.",
			"That's kind of you to say. What else can I do for you?",
		},
	},
	{
		Name:           "smalltalk",
		Conversational: true,
		Triggers: []string{
			"how are you", "what's up", "how is it going", "how are you doing",
			"are you a robot", "who are you",
		},
		Responses: []string{
			"I'm doing well, thanks for asking! How can I help you?",
			"I'm a support assistant, ready to answer your questions.",
			"All good here! What would you like to know?",
		},
	},
	{
		Name: "help",
		Triggers: []string{
			"help", "can you help me", "i need help", "i need assistance",
			"what can you do", "how does this work",
		},
		Responses: []string{
			"Of course! Ask me anything about our products or services.",
			"I can answer questions about our services, pricing and policies. What do you need?",
		},
	},
	{
		Name: "contact",
		Triggers: []string{
			"contact", "contact support", "talk to a human", "speak to someone",
			"customer service", "phone number", "email address",
		},
		Responses: []string{
			"You can reach our support team through the contact page, or keep asking me here.",
			"If you'd like to talk to a person, use the contact details on our site. Meanwhile, I'm happy to help.",
		},
	},
	{
		Name: "hours",
		Triggers: []string{
			"opening hours", "business hours", "when are you open",
			"what time do you open", "what time do you close",
		},
		Responses: []string{
			"Our team is available during regular business hours. For exact times, check the contact page.",
		},
	},
}
