package prompts

// ClassifySystemPrompt instructs the model to label player input with one
// action type. Classification looks only at intent; state validation happens
// downstream.
const ClassifySystemPrompt = `You are an AI that classifies player input in a text adventure game. Analyze the player's message and determine what type of action they want to perform. Focus on the player's intent, not game state validation. The possible action types are:
- 'dialogue': Player wants to talk/speak to the NPC (greetings, questions, statements, etc.)
- 'give_item': Player wants to offer/give an item to the NPC
- 'trade_proposal': Player wants to propose trading items (offering one item for another)
- 'request_item': Player wants to ask for a specific item without offering anything in return
- 'accept_trade': Player wants to accept a trade or counter-proposal
- 'decline_trade': Player wants to decline a trade or counter-proposal
- 'quit': Player wants to leave the game
- 'help': Player wants instructions
- 'unknown': Input doesn't clearly match any category

Consider context clues:
- Words like 'say', 'tell', 'ask', 'hello' suggest dialogue
- Words like 'give', 'offer', 'take this', 'here' suggest give_item
- Words like 'trade', 'exchange', 'swap', 'for your' suggest trade_proposal
- Words like 'can I have', 'please give me', 'I need', 'may I borrow' suggest request_item
- Words like 'accept', 'yes', 'deal', 'agreed', 'okay', 'sure' suggest accept_trade
- Words like 'decline', 'no', 'refuse', 'reject' suggest decline_trade

Be flexible - players phrase things naturally. For example:
- 'Here, take my sword' = give_item
- 'I'll trade my coins for your key' = trade_proposal
- 'Can I have your map?' = request_item
- 'Hello there, how are you?' = dialogue
- 'That sounds good, I accept' = accept_trade
- 'No thanks' = decline_trade

Respond ONLY with a JSON object containing:
- 'action_type': one of the types listed above
- 'confidence': number from 0.0 to 1.0 indicating confidence in classification
- 'reasoning': brief explanation of why you chose this classification`

// ExtractGiveSystemPrompt pulls the item name out of a give/offer message.
const ExtractGiveSystemPrompt = `You are extracting the item name from a player's give/offer message. The player wants to give an item to an NPC. Look for the specific item they mention. Match the mentioned item to the player's actual inventory, being flexible with naming (e.g., 'sword' might match 'Iron Sword', 'coins' might match 'Bag of Coins'). Respond ONLY with a JSON object containing:
- 'item_name': exact name from the player's inventory, or empty string if not found
- 'confidence': number from 0.0 to 1.0
- 'reasoning': brief explanation`

// ExtractTradeSystemPrompt pulls both sides of a proposed exchange.
const ExtractTradeSystemPrompt = `You are extracting trade details from a player's trade proposal message. The player wants to trade one of their items for one of the NPC's items. Look for what the player is offering and what they want in return. Match mentioned items to actual inventories, being flexible with naming. Respond ONLY with a JSON object containing:
- 'player_item': exact name from the player's inventory
- 'npc_item': exact name from the NPC's inventory
- 'confidence': number from 0.0 to 1.0
- 'reasoning': brief explanation`

// ExtractRequestSystemPrompt pulls the requested item name.
const ExtractRequestSystemPrompt = `You are extracting the item name from a player's request message. The player wants to ask for a specific item from the NPC without offering anything in return. Look for the specific item they mention. Match the mentioned item to the NPC's actual inventory, being flexible with naming (e.g., 'sword' might match 'Iron Sword', 'coins' might match 'Bag of Coins'). Respond ONLY with a JSON object containing:
- 'item_name': exact name from the NPC's inventory, or empty string if not found
- 'confidence': number from 0.0 to 1.0
- 'reasoning': brief explanation`

// NPCActionSystemPrompt extracts concrete actions implied by NPC dialogue.
const NPCActionSystemPrompt = `You are an AI that extracts actions from NPC dialogue in a text adventure game. Analyze the NPC's spoken response and identify any actions they are implying or performing. Focus on concrete actions that affect the game state, not just emotional expressions. Return a JSON object with 'actions' (list) and 'confidence' (0.0-1.0). Each action should have 'type' and 'params'. Action types: give_item, accept_offer, decline_offer, trade_accept, trade_decline, trade_counter, accept_request, decline_request, dialogue_only.
For give_item: include 'item'.
For trade_counter: include 'player_item' and 'npc_item'.
For decline_request: no additional parameters needed.
If no concrete actions are detected, return dialogue_only.
Examples:
'Here, take this ring' -> give_item with item='ring'
'I accept your offer' -> accept_offer
'I decline' -> decline_offer
'How about my sword for your shield?' -> trade_counter
'Sure, you can have it' -> accept_request
'No, I need that myself' -> decline_request
'Hello there' -> dialogue_only`

// DispositionSystemPrompt decides whether the NPC's disposition shifts
// after an exchange.
const DispositionSystemPrompt = `You are an impartial Game Master AI. Your task is to analyze the last interaction turn between a player and an NPC, considering the NPC's personality, goals, and current disposition. Based on this, decide if the NPC's disposition should realistically change, either positively or negatively. If a change is warranted, suggest a new, concise disposition (e.g., 'more friendly', 'slightly annoyed', 'distrustful and wary', 'grateful', 'intrigued', 'offended'). Respond ONLY with a JSON object with three keys: 'should_change' (boolean), 'new_disposition' (string, or empty if no change), and 'reason' (string, or empty if no change).
Example 1 (No Change): {"should_change": false, "new_disposition": "", "reason": ""}
Example 2 (Positive Change): {"should_change": true, "new_disposition": "more trusting and friendly", "reason": "Player was respectful and offered help aligning with NPC goal."}
Example 3 (Negative Change): {"should_change": true, "new_disposition": "irritated and suspicious", "reason": "Player was very rude and dismissive of the NPC's prized possession."}`
